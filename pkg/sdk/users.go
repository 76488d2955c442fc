package sdk

import "net/url"

type tokenResponse struct {
	Token string `json:"token"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(username, password string, remember bool) (string, error) {
	var resp tokenResponse
	if err := c.post("/api/login", credentials{Username: username, Password: password, Remember: remember}, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(username, password string, remember bool) (string, error) {
	var resp tokenResponse
	if err := c.post("/api/register", credentials{Username: username, Password: password, Remember: remember}, &resp); err != nil {
		return "", err
	}
	c.token = resp.Token
	return resp.Token, nil
}

func (c *Client) Logout() error {
	if err := c.post("/api/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) Me() (*User, error) {
	var user User
	if err := c.get("/api/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteAccount() error {
	return c.post("/api/delete_user", nil, nil)
}

func (c *Client) UpdatePassword(password string) error {
	return c.post("/api/user/update_password", map[string]string{"password": password}, nil)
}

func (c *Client) GetUser(username string) (*User, error) {
	var user User
	if err := c.get("/api/user/"+url.PathEscape(username), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers() ([]User, error) {
	var users []User
	err := c.get("/api/users", &users)
	return users, err
}

func (c *Client) SetAccessLevel(username, level string) error {
	return c.post("/api/user/"+url.PathEscape(username)+"/global_access", map[string]string{"access_level": level}, nil)
}

func (c *Client) SetUserPassword(username, password string) error {
	return c.post("/api/user/"+url.PathEscape(username)+"/password", map[string]string{"password": password}, nil)
}
