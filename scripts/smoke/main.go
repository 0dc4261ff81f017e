// Command smoke runs a quick end-to-end check against a running API
// instance: liveness, readiness, login and a pass over the main read
// endpoints. Intended for deploy verification, not load testing.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type check struct {
	Name     string
	Method   string
	Path     string
	Authed   bool
	WantCode int
}

type result struct {
	Check    check
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "API base URL")
	prefix := flag.String("prefix", "/api/v1", "API route prefix")
	email := flag.String("email", "", "login email (skips authed checks when empty)")
	password := flag.String("password", "", "login password")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}

	checks := []check{
		{Name: "liveness", Method: http.MethodGet, Path: "/health", WantCode: http.StatusOK},
		{Name: "readiness", Method: http.MethodGet, Path: "/ready", WantCode: http.StatusOK},
		{Name: "metrics", Method: http.MethodGet, Path: "/metrics", WantCode: http.StatusOK},
		{Name: "professors", Method: http.MethodGet, Path: *prefix + "/professors", Authed: true, WantCode: http.StatusOK},
		{Name: "areas", Method: http.MethodGet, Path: *prefix + "/areas", Authed: true, WantCode: http.StatusOK},
		{Name: "advisings", Method: http.MethodGet, Path: *prefix + "/advisings", Authed: true, WantCode: http.StatusOK},
	}

	var token string
	if *email != "" {
		var err error
		token, err = login(client, *baseURL+*prefix+"/auth/login", *email, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	failed := 0
	for _, c := range checks {
		if c.Authed && token == "" {
			fmt.Printf("SKIP  %-12s (no credentials)\n", c.Name)
			continue
		}
		res := run(client, *baseURL, c, token)
		mark := "OK  "
		if res.Err != nil || res.Status != c.WantCode {
			mark = "FAIL"
			failed++
		}
		if res.Err != nil {
			fmt.Printf("%s  %-12s %v\n", mark, c.Name, res.Err)
			continue
		}
		fmt.Printf("%s  %-12s %d in %s\n", mark, c.Name, res.Status, res.Duration.Round(time.Millisecond))
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func run(client *http.Client, baseURL string, c check, token string) result {
	req, err := http.NewRequest(c.Method, baseURL+c.Path, nil)
	if err != nil {
		return result{Check: c, Err: err}
	}
	if c.Authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return result{Check: c, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return result{Check: c, Status: resp.StatusCode, Duration: time.Since(start)}
}

func login(client *http.Client, url, email, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Data.AccessToken == "" {
		return "", fmt.Errorf("no access token in response")
	}
	return body.Data.AccessToken, nil
}
