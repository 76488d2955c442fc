package server

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UpdateServerProperties merges values into server.properties, keeping the
// existing keys and their order.
func UpdateServerProperties(serverDir string, values map[string]string) error {
	path := filepath.Join(serverDir, "server.properties")

	props := make(map[string]string)
	var order []string

	if file, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				if _, seen := props[key]; !seen {
					order = append(order, key)
				}
				props[key] = strings.TrimSpace(parts[1])
			}
		}
		file.Close()
	}

	for key, val := range values {
		if _, seen := props[key]; !seen {
			order = append(order, key)
		}
		props[key] = val
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString("#Minecraft server properties\n")
	for _, key := range order {
		writer.WriteString(fmt.Sprintf("%s=%s\n", key, props[key]))
	}
	return writer.Flush()
}

// ReadServerProperties returns the key/value pairs of server.properties.
func ReadServerProperties(serverDir string) (map[string]string, error) {
	file, err := os.Open(filepath.Join(serverDir, "server.properties"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	props := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if parts := strings.SplitN(line, "=", 2); len(parts) == 2 {
			props[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return props, scanner.Err()
}
