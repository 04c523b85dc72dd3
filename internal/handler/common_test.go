package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

var (
	InvalidJSON = `{"invalid": json}`
)

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody 解析回應 JSON 為 map 方便驗證個別欄位
func decodeBody(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", body, err)
	}
	return decoded
}

// numbersField 取出回應中的整數陣列欄位（JSON 數字解碼為 float64）
func numbersField(t *testing.T, decoded map[string]interface{}, field string) []int {
	t.Helper()
	raw, ok := decoded[field].([]interface{})
	if !ok {
		t.Fatalf("response field %q missing or not an array: %v", field, decoded)
	}
	numbers := make([]int, 0, len(raw))
	for _, item := range raw {
		numbers = append(numbers, int(item.(float64)))
	}
	return numbers
}
