package user

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/PrepDeck/internal/controller"
	"github.com/lshigami/PrepDeck/internal/dto"
	"github.com/lshigami/PrepDeck/internal/service"
	"github.com/rs/zerolog/log"
)

const maxImageBytes = 2 << 20

type AccountController struct {
	authService    service.AuthService
	userService    service.UserService
	contactService service.ContactService
}

func NewAccountController(as service.AuthService, us service.UserService, cs service.ContactService) *AccountController {
	return &AccountController{authService: as, userService: us, contactService: cs}
}

// Signup godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body dto.SignupRequestDTO true "Name, email and password"
// @Success 201 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input or user already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/signup [post]
func (c *AccountController) Signup(ctx *gin.Context) {
	var req dto.SignupRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.authService.Signup(req)
	if err != nil {
		msg := "Failed to sign up"
		if errors.Is(err, service.ErrUserExists) {
			msg = "User already exists"
		}
		controller.RespondError(ctx, err, msg)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in and receive a token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequestDTO true "Email and password"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AccountController) Login(ctx *gin.Context) {
	var req dto.LoginRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	resp, err := c.authService.Login(req)
	if err != nil {
		msg := "Failed to log in"
		if errors.Is(err, service.ErrInvalidCredentials) {
			msg = "Invalid credentials"
		}
		controller.RespondError(ctx, err, msg)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetUser godoc
// @Summary Get a user profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.UserResponseDTO
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{user_id} [get]
func (c *AccountController) GetUser(ctx *gin.Context) {
	id, ok := controller.ParamID(ctx, "user_id")
	if !ok {
		return
	}
	user, err := c.userService.GetUser(id)
	if err != nil {
		controller.RespondError(ctx, err, "User not found")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update the caller's profile
// @Description Multipart form with optional name, contact, password and image file.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Param name formData string false "Display name"
// @Param contact formData string false "Contact number"
// @Param password formData string false "New password"
// @Param image formData file false "Profile image (png, jpeg, gif, webp)"
// @Success 200 {object} dto.UserResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Not the caller's profile"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{user_id} [put]
func (c *AccountController) UpdateUser(ctx *gin.Context) {
	id, ok := controller.OwnParam(ctx, "user_id")
	if !ok {
		return
	}
	var req dto.UserUpdateDTO
	if err := ctx.ShouldBind(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}

	var image []byte
	if header, err := ctx.FormFile("image"); err == nil {
		if header.Size > maxImageBytes {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Image is too large"})
			return
		}
		f, err := header.Open()
		if err != nil {
			controller.RespondError(ctx, err, "Failed to read image")
			return
		}
		image, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			controller.RespondError(ctx, err, "Failed to read image")
			return
		}
	}

	user, err := c.userService.UpdateUser(id, req, image)
	if err != nil {
		controller.RespondError(ctx, err, "Failed to update user")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Param passwords body dto.PasswordChangeDTO true "Old and new password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Old password is incorrect"
// @Failure 403 {object} dto.ErrorResponse "Not the caller's account"
// @Router /users/{user_id}/password [put]
func (c *AccountController) ChangePassword(ctx *gin.Context) {
	id, ok := controller.OwnParam(ctx, "user_id")
	if !ok {
		return
	}
	var req dto.PasswordChangeDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	if err := c.userService.ChangePassword(id, req); err != nil {
		controller.RespondError(ctx, err, "Failed to change password")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: "Password updated"})
}

// Contact godoc
// @Summary Send a message to the site owners
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body dto.ContactRequestDTO true "Contact form"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Router /contact [post]
func (c *AccountController) Contact(ctx *gin.Context) {
	var req dto.ContactRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err)
		return
	}
	if err := c.contactService.Submit(req); err != nil {
		log.Error().Err(err).Msg("Contact: Service error")
		controller.RespondError(ctx, err, "Failed to send message")
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
