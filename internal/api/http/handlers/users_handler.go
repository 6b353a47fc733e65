package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joshwa2003/hr-helpdesk/internal/api/dto"
	"github.com/joshwa2003/hr-helpdesk/internal/auth"
	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/service"
	apperrors "github.com/joshwa2003/hr-helpdesk/pkg/util"
)

// UsersHandler exposes the account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/register. Self-registration always creates an
// employee account; the role field is honored only for admin callers, which
// the router enforces on the /admin variant of this route.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		ManagerID: req.ManagerID,
	}
	if actor, ok := auth.UserFromContext(c); ok && actor.Role == domain.RoleAdmin {
		input.Role = req.Role
	}
	user, err := h.auth.Register(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponse(result.User),
	}})
}

// ChangePassword handles POST /auth/change-password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ChangePassword(c.Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": userResponse(actor)})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		ManagerID: user.ManagerID,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}
