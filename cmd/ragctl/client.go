package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// httpClient is shared by all commands.
var httpClient = &http.Client{Timeout: 120 * time.Second}

// postJSON sends body as JSON and decodes the response into out.
func postJSON(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	resp, err := httpClient.Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("contacting server: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// decodeResponse checks status and decodes the JSON body into out.
func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status, e.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func runUserCreate(name, pass string) error {
	if err := requireAdminFlags(); err != nil {
		return err
	}
	var out struct {
		Message string `json:"message"`
	}
	err := postJSON("/admin/create_user", map[string]string{
		"username": name,
		"password": pass,
		"secret":   adminSecret,
	}, &out)
	if err != nil {
		return err
	}
	fmt.Println(out.Message)
	return nil
}

func runUserDelete(name string) error {
	if err := requireAdminFlags(); err != nil {
		return err
	}
	var out struct {
		Message string `json:"message"`
	}
	err := postJSON("/admin/delete_user", map[string]string{
		"username": name,
		"secret":   adminSecret,
	}, &out)
	if err != nil {
		return err
	}
	fmt.Println(out.Message)
	return nil
}

func runUserList() error {
	if err := requireAdminFlags(); err != nil {
		return err
	}
	var out struct {
		Users []string `json:"users"`
	}
	if err := postJSON("/admin/list_users", map[string]string{"secret": adminSecret}, &out); err != nil {
		return err
	}
	for _, u := range out.Users {
		fmt.Println(u)
	}
	return nil
}

func runUpload(path string) error {
	if err := requireTenantFlags(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("username", username); err != nil {
		return err
	}
	if err := mw.WriteField("password", password); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := httpClient.Post(serverURL+"/upload_pdf", mw.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("contacting server: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
		File   string `json:"file"`
		Chunks int    `json:"chunks"`
	}
	if err := decodeResponse(resp, &out); err != nil {
		return err
	}
	fmt.Printf("%s: %s (%d chunks)\n", out.Status, out.File, out.Chunks)
	return nil
}

func runAsk(question string) error {
	if err := requireTenantFlags(); err != nil {
		return err
	}
	var out struct {
		Response string `json:"response"`
	}
	err := postJSON("/query", map[string]string{
		"username": username,
		"password": password,
		"message":  question,
	}, &out)
	if err != nil {
		return err
	}
	fmt.Println(out.Response)
	return nil
}

func runDocsList() error {
	if err := requireTenantFlags(); err != nil {
		return err
	}
	var out struct {
		Documents []string `json:"pdfs"`
	}
	err := postJSON("/list_pdfs", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return err
	}
	for _, d := range out.Documents {
		fmt.Println(d)
	}
	return nil
}

func runDocsDelete(name string) error {
	if err := requireTenantFlags(); err != nil {
		return err
	}
	var out struct {
		Status string `json:"status"`
		File   string `json:"file"`
	}
	err := postJSON("/delete_pdf", map[string]string{
		"username": username,
		"password": password,
		"filename": name,
	}, &out)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", out.Status, out.File)
	return nil
}

func runHealth() error {
	resp, err := httpClient.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("contacting server: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := decodeResponse(resp, &out); err != nil {
		return err
	}
	fmt.Println(out.Status)
	return nil
}
