package handlers

import (
	"time"

	"github.com/anjiri1684/drive_tutor/models"
	"github.com/anjiri1684/drive_tutor/services"
	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	FullName   string  `json:"full_name" validate:"required,min=3"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	Role       string  `json:"role" validate:"required,oneof=student instructor"`
	City       string  `json:"city" validate:"max=120"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func (h *Handlers) RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.Auth.Register(c.UserContext(), services.RegisterInput{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       models.Role(req.Role),
		City:       req.City,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

func (h *Handlers) LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	token, user, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"token": token, "user": toUserResponse(user)})
}

func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "If an account with that email exists, a password reset link has been sent."})
}

func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Auth.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password has been reset successfully."})
}

func (h *Handlers) GetMe(c *fiber.Ctx) error {
	user, err := h.Auth.Me(c.UserContext(), actor(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}
