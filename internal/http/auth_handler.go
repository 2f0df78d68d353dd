package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/crypto"
	"log/slog"

	"topupdesk/internal/users"
)

// ProcessLoginAction handles POST /api/login
func ProcessLoginAction(ctx *cartridge.Context) error {
	email := ctx.FormValue("email")
	password := ctx.FormValue("password")

	if email == "" && password == "" {
		var jsonBody struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.BodyParser(&jsonBody); err == nil {
			email = jsonBody.Email
			password = jsonBody.Password
		}
	}

	if email == "" || password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	db := ctx.DB()
	user, lookupErr := users.FindByEmail(db, email)

	// Always verify a hash so response time does not reveal whether the
	// email exists.
	var passwordValid bool
	if lookupErr != nil {
		ctx.Logger.Debug("User not found during login", slog.String("email", email))
		dummyHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // bcrypt hash of "dummy"
		crypto.VerifyPassword(dummyHash, password)
	} else {
		passwordValid = crypto.VerifyPassword(user.EncryptedPassword, password)
		if !passwordValid {
			ctx.Logger.Debug("Invalid password attempt", slog.String("email", email))
		}
	}

	if !passwordValid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	if err := ctx.Session.SetSession(ctx.Ctx, user.ID); err != nil {
		ctx.Logger.Error("Failed to set session", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	if err := users.TouchLastLogin(ctx.Logger, db, user.ID); err != nil {
		ctx.Logger.Warn("Failed to record login time", slog.Any("error", err))
	}

	ctx.Logger.Info("Login successful",
		slog.String("email", email),
		slog.Int("userId", int(user.ID)))
	return ctx.JSON(fiber.Map{"status": "ok", "userId": user.ID})
}

// LoginShowAction handles GET /login, where the session middleware
// sends unauthenticated requests. The admin UI is its own client, so
// instead of rendering a form the server answers with where to
// authenticate; a live session is bounced back to its own status.
func LoginShowAction(ctx *cartridge.Context) error {
	if _, authenticated := ctx.Session.GetUserID(ctx.Ctx); authenticated {
		return ctx.Redirect("/api/session", fiber.StatusFound)
	}
	return ctx.JSON(fiber.Map{
		"authenticated": false,
		"loginUrl":      "/api/login",
	})
}

// LogoutAction handles POST /api/logout
func LogoutAction(ctx *cartridge.Context) error {
	ctx.Session.ClearSession(ctx.Ctx)
	return ctx.JSON(fiber.Map{"status": "ok"})
}

// SessionShowAction handles GET /api/session, so the admin UI can tell
// whether its cookie is still good.
func SessionShowAction(ctx *cartridge.Context) error {
	userID, authenticated := ctx.Session.GetUserID(ctx.Ctx)
	if !authenticated {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
	}

	user, err := users.FindByID(ctx.DB(), userID)
	if err != nil {
		ctx.Logger.Error("Session user missing", slog.Uint64("userID", uint64(userID)), slog.Any("error", err))
		ctx.Session.ClearSession(ctx.Ctx)
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"authenticated": false})
	}

	return ctx.JSON(fiber.Map{
		"authenticated": true,
		"userId":        user.ID,
		"email":         user.Email,
	})
}

// ChangePasswordAction handles POST /api/account/password
func ChangePasswordAction(ctx *cartridge.Context) error {
	userID, authenticated := ctx.Session.GetUserID(ctx.Ctx)
	if !authenticated {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}

	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := ctx.BodyParser(&payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if len(payload.NewPassword) < 8 {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "New password must be at least 8 characters long"})
	}

	db := ctx.DB()
	user, err := users.FindByID(db, userID)
	if err != nil {
		ctx.Logger.Error("Failed to find user for password change", slog.Uint64("userID", uint64(userID)), slog.Any("error", err))
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if !crypto.VerifyPassword(user.EncryptedPassword, payload.CurrentPassword) {
		ctx.Logger.Warn("Invalid current password provided during password change", slog.Uint64("userID", uint64(userID)))
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Current password is incorrect"})
	}

	if err := users.ChangePassword(db, user.Email, payload.NewPassword); err != nil {
		ctx.Logger.Error("Failed to change password", slog.Uint64("userID", uint64(userID)), slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to change password"})
	}

	ctx.Logger.Info("Password changed", slog.String("email", user.Email))
	return ctx.JSON(fiber.Map{"status": "ok"})
}
