package hcaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tablescout/tablescout/internal/pkg/env"
)

const verifyURL = "https://hcaptcha.com/siteverify"

var httpClient = &http.Client{Timeout: 10 * time.Second}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks a client-solved captcha token against the hCaptcha API.
func Verify(token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, errors.New("captcha token is empty")
	}
	secret := env.GetEnv("HCAPTCHA_SECRET", "")
	if secret == "" {
		return false, errors.New("HCAPTCHA_SECRET is not configured")
	}

	form := url.Values{
		"secret":   {secret},
		"response": {token},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verification request: %w", err)
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return false, fmt.Errorf("decode captcha verification response: %w", err)
	}

	if !result.Success {
		if len(result.ErrorCodes) > 0 {
			return false, fmt.Errorf("captcha rejected: %s", strings.Join(result.ErrorCodes, ", "))
		}
		return false, errors.New("captcha rejected")
	}
	return true, nil
}
