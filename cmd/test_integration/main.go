package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

const reference = "Revenue was $2.5M in Q4 2023, up 15%. CEO John Smith announced expansion Jan 15, 2024. Margin improved to 22%."

func main() {
	if u := os.Getenv("FACTCHECK_URL"); u != "" {
		baseURL = u
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Health check...")
	if _, ok := sendRequest("GET", "/healthz", nil); !ok {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	fmt.Println("2. Evaluating batch...")
	batch := map[string]interface{}{
		"reference": map[string]string{"id": "ref", "text": reference},
		"candidates": []map[string]string{
			{"id": "c1", "text": "Revenue was $3.2M, up 20%. Expansion announced Jan 20."},
			{"id": "c2", "text": "Revenue declined in Q4. CEO announced expansion."},
			{"id": "c3", "text": "Company performed well; CEO optimistic about growth."},
		},
	}
	body, ok := sendRequest("POST", "/evaluate", batch)
	if !ok {
		fmt.Println("FAILED: Evaluate batch")
		os.Exit(1)
	}

	var result struct {
		BatchID string `json:"batch_id"`
		Records []struct {
			CandidateID    string  `json:"candidate_id"`
			Classification string  `json:"classification"`
			Confidence     float64 `json:"confidence"`
		} `json:"records"`
	}
	if err := json.Unmarshal(body, &result); err != nil || len(result.Records) != 3 {
		fmt.Printf("FAILED: Unexpected batch response: %v\n", err)
		os.Exit(1)
	}
	for _, r := range result.Records {
		fmt.Printf("  %s: %s (%.2f)\n", r.CandidateID, r.Classification, r.Confidence)
	}
	fmt.Println("PASSED: Evaluate batch")

	fmt.Println("3. Evaluating pair...")
	pair := map[string]interface{}{
		"reference": map[string]string{"text": "Revenue increased in Q4."},
		"candidate": map[string]string{"text": "Revenue declined in Q4."},
	}
	if _, ok := sendRequest("POST", "/evaluate/pair", pair); !ok {
		fmt.Println("FAILED: Evaluate pair")
		os.Exit(1)
	}
	fmt.Println("PASSED: Evaluate pair")
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	return respBody, true
}
