package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/user"
)

type schoolApi struct {
	svc *school.Service
}

func registerSchoolAPI(g *echo.Group, svc *school.Service, authed []echo.MiddlewareFunc) {
	api := schoolApi{svc: svc}

	dashboard := guarded(authed, "/dashboard")
	g.GET("/dashboard/school-data", api.schoolData, dashboard...)
	g.GET("/school-fees", api.feeStructure, dashboard...)

	sg := g.Group("/settings", guarded(authed, "/settings")...)
	sg.GET("", api.retrieve)
	sg.POST("", api.save)
}

// Handlers

// schoolData describes the school to the signed-in user. Missing settings are not an error here.
func (api *schoolApi) schoolData(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}

	data := SchoolDataResponse{
		UserName: usr.Name,
		UserRole: usr.Role,
		Classes:  []school.Class{},
	}
	s, err := api.svc.Get(ctx.Request().Context())
	switch err {
	case nil:
		data.SchoolID = &s.SchoolID
		data.SchoolName = &s.SchoolName
		data.Slogan = &s.Slogan
		data.Logo = &s.Logo
		data.TransportFees = s.TransportFees
		if s.Classes != nil {
			data.Classes = s.Classes
		}
	case school.ErrSettingsNotFound:
	default:
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *schoolApi) feeStructure(ctx echo.Context) error {
	fs, err := api.svc.FeeStructure(ctx.Request().Context())
	if err != nil {
		return err
	}
	if fs.Classes == nil {
		fs.Classes = []school.Class{}
	}
	return ctx.JSON(http.StatusOK, fs)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) save(ctx echo.Context) error {
	var data school.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	s, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

type SchoolDataResponse struct {
	UserName      string               `json:"userName"`
	UserRole      user.Role            `json:"userRole"`
	SchoolID      *string              `json:"schoolId"`
	SchoolName    *string              `json:"schoolName"`
	Slogan        *string              `json:"slogan"`
	Logo          *string              `json:"logoBase64"`
	Classes       []school.Class       `json:"classes"`
	TransportFees school.TransportFees `json:"transportFees"`
}
