package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tablescout/tablescout/app/models"
	"github.com/tablescout/tablescout/app/repository"
	"github.com/tablescout/tablescout/internal/pkg/env"
	"github.com/tablescout/tablescout/internal/pkg/hcaptcha"
	"github.com/tablescout/tablescout/internal/pkg/mail"
)

type signupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Locale       string `json:"locale"`
	CaptchaToken string `json:"captcha_token"`
}

// HandleSignup registers a new inactive account and sends the confirmation
// email.
func HandleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	// Captcha is enforced only when configured, so local development and
	// tests can skip it.
	if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
		valid, err := hcaptcha.Verify(req.CaptchaToken)
		if err != nil || !valid {
			errorMsg := "Captcha validation failed. Please try again."
			if err != nil {
				log.Printf("hCaptcha validation error: %v", err)
				// surface the exact failure in development only
				if env.IsDev() {
					errorMsg = fmt.Sprintf("Captcha validation failed: %v", err)
				}
			}
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", errorMsg)
		}
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if loc := strings.ToLower(strings.TrimSpace(req.Locale)); loc == "de" || loc == "en" {
		user.Locale = loc
	}
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not create activation token")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(user.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "An account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}

	if err := repo.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}

	sendConfirmationMail(user)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created. Please confirm your email address.",
	})
}

// HandleConfirmEmail activates an account via the emailed token.
func HandleConfirmEmail(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Missing confirmation token")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown confirmation token")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Confirmation failed")
	}

	if !user.IsActivationTokenValid(token) {
		return jsonError(c, fiber.StatusGone, "token_expired", "The confirmation link has expired. Please sign up again.")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	user.ActivationSentAt = nil
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Confirmation failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Email confirmed. Your account is now active."})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a fresh API key.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		// Do not leak whether the account exists.
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}
	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Account is not active")
	}

	apiKey, err := user.IssueAPIKey()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"api_key": apiKey,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// HandlePasswordResetRequest sends a reset link. Responds 200 regardless of
// whether the account exists (no enumeration).
func HandlePasswordResetRequest(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.TrimSpace(req.Email))
	if err == nil {
		if err := user.GeneratePasswordResetToken(); err == nil {
			if err := repo.Update(user); err == nil {
				sendPasswordResetMail(user)
			} else {
				log.Printf("password reset: persisting token for user %d failed: %v", user.ID, err)
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("password reset: lookup failed: %v", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "If an account exists for this address, a reset email has been sent.",
	})
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandlePasswordResetConfirm sets a new password via the emailed token.
func HandlePasswordResetConfirm(c *fiber.Ctx) error {
	var req passwordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if len(req.Password) < 6 {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "Password must be at least 6 characters")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByPasswordResetToken(strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown reset token")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Password reset failed")
	}

	if !user.IsPasswordResetTokenValid(req.Token) {
		return jsonError(c, fiber.StatusGone, "token_expired", "The reset link has expired. Please request a new one.")
	}

	if err := user.SetPassword(req.Password); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Password reset failed")
	}
	user.ClearPasswordResetRequest()
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Password reset failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password updated. You can now log in."})
}

func sendConfirmationMail(user *models.User) {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	link := fmt.Sprintf("%s/api/v1/auth/confirm/%s", base, user.ActivationToken)
	mail.NewClientFromEnv().SendTemplate(user, mail.TemplateConfirmEmail, map[string]string{"link": link})
}

func sendPasswordResetMail(user *models.User) {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	link := fmt.Sprintf("%s/reset-password?token=%s", base, user.PasswordResetToken)
	mail.NewClientFromEnv().SendTemplate(user, mail.TemplatePasswordReset, map[string]string{"link": link})
}
