package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulalink/backend/core"
	"github.com/aulalink/backend/core/account"
)

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{deps: deps}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/login` & `/register`
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
	ag.POST("/invitations/accept", api.acceptInvitation)

	// authed endpoints
	tg := ag.Group("", jwt)
	tg.POST("/token-refresh", api.refreshToken)

	g.GET("/me", api.me, jwt)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.deps)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.deps.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	switch data.Role {
	case account.RoleTeacher:
		form := account.RegisterTeacher{
			FullName:        data.FullName,
			Email:           data.Email,
			Password:        data.Password,
			PasswordConfirm: data.PasswordConfirm,
			SchoolName:      data.SchoolName,
			Subject:         data.Subject,
		}
		if err := form.Validate(api.deps.Validate); err != nil {
			return err
		}
		prof, tchr, err := api.deps.AccountSvc.RegisterTeacher(reqCtx, form)
		if err != nil {
			return errors.Wrap(err, "registering teacher")
		}
		return ctx.JSON(http.StatusCreated, RegisterResponse{Profile: prof, Teacher: &tchr})
	default:
		form := account.RegisterStudent{
			FullName:        data.FullName,
			Email:           data.Email,
			Password:        data.Password,
			PasswordConfirm: data.PasswordConfirm,
			TeacherCode:     data.TeacherCode,
			Grade:           data.Grade,
		}
		if err := form.Validate(api.deps.Validate); err != nil {
			return err
		}
		prof, err := api.deps.AccountSvc.RegisterStudent(reqCtx, form)
		if err != nil {
			return errors.Wrap(err, "registering student")
		}
		return ctx.JSON(http.StatusCreated, RegisterResponse{Profile: prof})
	}
}

func (api *authApi) acceptInvitation(ctx echo.Context) error {
	var data account.AcceptInvitation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AcceptInvitation")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	prof, err := api.deps.AccountSvc.AcceptInvitation(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "accepting invitation")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{Profile: prof})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) me(ctx echo.Context) error {
	prof, err := getContextProfile(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "getting context profile")
	}

	res := MeResponse{Profile: prof}
	if prof.IsTeacher() {
		tchr, err := api.deps.AccountSvc.GetTeacher(ctx.Request().Context(), prof.ID)
		if err != nil {
			return errors.Wrap(err, "getting teacher")
		}
		res.Teacher = &tchr
	}
	return ctx.JSON(http.StatusOK, res)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	// RegisterRequest is the combined registration payload; role picks which
	// account form the fields feed.
	RegisterRequest struct {
		Role            string `json:"role" validate:"required,oneof=teacher student"`
		FullName        string `json:"full_name" validate:"required"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`

		// teacher fields
		SchoolName string `json:"school_name"`
		Subject    string `json:"subject"`

		// student fields
		TeacherCode string `json:"teacher_code"`
		Grade       string `json:"grade"`
	}

	RegisterResponse struct {
		Profile account.Profile  `json:"profile"`
		Teacher *account.Teacher `json:"teacher,omitempty"`
	}

	MeResponse struct {
		Profile account.Profile  `json:"profile"`
		Teacher *account.Teacher `json:"teacher,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (rr *RegisterRequest) Validate(validate *validator.Validate) error {
	rr.Role = core.CleanString(rr.Role, true /* lower */)
	return validate.Struct(rr)
}
