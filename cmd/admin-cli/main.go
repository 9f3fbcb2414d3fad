package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
	"manhwahub/internal/titles"
	"manhwahub/pkg/models"
)

const VERSION = "1.0.0"

type Config struct {
	Server struct {
		URL string `yaml:"url"`
	} `yaml:"server"`
	User struct {
		Username string `yaml:"username"`
		Token    string `yaml:"token"`
		UserID   string `yaml:"user_id"`
	} `yaml:"user"`
}

var (
	config     Config
	configPath string
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	loadConfig()
	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("ManhwaHub Admin CLI v%s\n", VERSION)
	case "register":
		cmdRegister()
	case "login":
		cmdLogin()
	case "logout":
		config.User = struct {
			Username string `yaml:"username"`
			Token    string `yaml:"token"`
			UserID   string `yaml:"user_id"`
		}{}
		saveConfig()
		fmt.Println("Logged out")
	case "status":
		if config.User.Token == "" {
			fmt.Println("Status: Not logged in")
		} else {
			fmt.Printf("Status: Logged in as %s\n", config.User.Username)
		}
	case "show":
		cmdChapterStatus(true)
	case "hide":
		cmdChapterStatus(false)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ManhwaHub Admin CLI v` + VERSION + `

Commands:
  register --username <u> --email <e>     Create an admin account
  login --username <u>                    Authenticate and save the token
  logout                                  Clear the saved token
  status                                  Show login status
  show --manga <title> --chapters <list>  Make chapters visible in the catalog
  hide --manga <title> --chapters <list>  Remove chapters from the catalog
  version                                 Show version

Flags:
  --server <url>      Override the API server URL (default http://localhost:8080)
  --chapters <list>   Comma separated chapter numbers, e.g. "12,13,14"
  --offline           With hide: also mark the whole title unavailable`)
}

func cmdRegister() {
	username := requireFlag("--username")
	email := requireFlag("--email")

	fmt.Print("Password: ")
	password := readPassword()

	data := models.RegisterRequest{Username: username, Email: email, Password: password}
	if _, err := makeRequest("POST", "/auth/register", data, ""); err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nAccount %s created, now run: login --username %s\n", username, username)
}

func cmdLogin() {
	username := getFlag("--username")
	if username == "" {
		fmt.Print("Username: ")
		fmt.Scanln(&username)
	}

	fmt.Print("Password: ")
	password := readPassword()

	data := models.LoginRequest{Username: username, Password: password}
	resp, err := makeRequest("POST", "/auth/login", data, "")
	if err != nil {
		fmt.Printf("\nLogin failed: %v\n", err)
		os.Exit(1)
	}

	if token, ok := resp["token"].(string); ok {
		config.User.Token = token
		config.User.Username = username
		if userID, ok := resp["user_id"].(string); ok {
			config.User.UserID = userID
		}
		saveConfig()
	}

	fmt.Printf("\nWelcome back, %s (token saved)\n", username)
}

func cmdChapterStatus(visible bool) {
	if config.User.Token == "" {
		fmt.Println("Not logged in, run: login --username <u>")
		os.Exit(1)
	}

	title := requireFlag("--manga")
	chapterList := requireFlag("--chapters")

	var updates []models.ChapterStatusUpdate
	for _, raw := range strings.Split(chapterList, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		updates = append(updates, models.ChapterStatusUpdate{
			ChapterNo: titles.ChapterLabel(raw),
			Status:    visible,
		})
	}
	if len(updates) == 0 {
		fmt.Println("No chapters given")
		os.Exit(1)
	}

	available := visible || !hasFlag("--offline")
	endpoint := fmt.Sprintf("/%s/chapter-status?isActive=%t", titles.Slugify(title), available)
	body := models.ChapterStatusRequest{ChaptersToUpdate: updates}

	if _, err := makeRequest("POST", endpoint, body, config.User.Token); err != nil {
		fmt.Printf("Update failed: %v\n", err)
		os.Exit(1)
	}

	verb := "hidden"
	if visible {
		verb = "visible"
	}
	fmt.Printf("%d chapter(s) of %q now %s\n", len(updates), title, verb)
}

func makeRequest(method, endpoint string, body interface{}, token string) (map[string]interface{}, error) {
	base := config.Server.URL
	if v := getFlag("--server"); v != "" {
		base = v
	}
	url := strings.TrimRight(base, "/") + "/api" + endpoint

	var reqBody io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result map[string]interface{}
	json.Unmarshal(respBody, &result)

	if resp.StatusCode >= 400 {
		if errObj, ok := result["error"].(map[string]interface{}); ok {
			if msg, ok := errObj["message"].(string); ok {
				return nil, fmt.Errorf("%s", msg)
			}
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return result, nil
}

func loadConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	configPath = filepath.Join(home, ".manhwahub-admin.yaml")

	config.Server.URL = "http://localhost:8080"
	if data, err := os.ReadFile(configPath); err == nil {
		yaml.Unmarshal(data, &config)
	}
	if config.Server.URL == "" {
		config.Server.URL = "http://localhost:8080"
	}
}

func saveConfig() {
	data, _ := yaml.Marshal(config)
	os.WriteFile(configPath, data, 0600)
}

func getFlag(flag string) string {
	for i, arg := range os.Args {
		if arg == flag && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
	}
	return ""
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args {
		if arg == flag {
			return true
		}
	}
	return false
}

func requireFlag(flag string) string {
	v := getFlag(flag)
	if v == "" {
		fmt.Printf("Missing required flag %s\n", flag)
		os.Exit(1)
	}
	return v
}

func readPassword() string {
	pw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		var fallback string
		fmt.Scanln(&fallback)
		return fallback
	}
	return string(pw)
}
