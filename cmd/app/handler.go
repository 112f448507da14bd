package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/blogstack/internal/blogservice"
	"github.com/sushihentaime/blogstack/internal/common"
	"github.com/sushihentaime/blogstack/internal/uploadservice"
	"github.com/sushihentaime/blogstack/internal/userservice"
)

func authEnvelope(res *userservice.AuthResponse) envelope {
	return envelope{
		"access_token": res.AccessToken,
		"profile_img":  res.ProfileImg,
		"username":     res.Username,
		"fullname":     res.Fullname,
	}
}

type signupRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	var input signupRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.Signup(r.Context(), input.Fullname, input.Email, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Message())
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.serverErrorMessageResponse(w, r, err, "Email already exists")
		case errors.Is(err, userservice.ErrDuplicateUsername):
			app.serverErrorMessageResponse(w, r, err, "Username already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, authEnvelope(res), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) signinHandler(w http.ResponseWriter, r *http.Request) {
	var input signinRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrUserNotFound):
			app.writeErrorResponse(w, r, http.StatusNotFound, "Email not found")
		case errors.Is(err, userservice.ErrWrongAuthMethod):
			app.forbiddenErrorResponse(w, r, "Email already exists please use google to access account")
		case errors.Is(err, userservice.ErrIncorrectPassword):
			app.forbiddenErrorResponse(w, r, "Password is incorrect")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, authEnvelope(res), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type googleAuthRequest struct {
	AccessToken string `json:"access_token"`
}

func (app *application) googleAuthHandler(w http.ResponseWriter, r *http.Request) {
	var input googleAuthRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	res, err := app.userService.FederatedSignIn(r.Context(), input.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrWrongAuthMethod):
			app.forbiddenErrorResponse(w, r, "Email already exists please use password to access account")
		case errors.Is(err, userservice.ErrFederatedAuthFailure):
			app.serverErrorMessageResponse(w, r, err, "Failed to authenticate with google try with another account")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, authEnvelope(res), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type searchUsersRequest struct {
	Query string `json:"query"`
}

func (app *application) searchUsersHandler(w http.ResponseWriter, r *http.Request) {
	var input searchUsersRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	users, err := app.userService.SearchUsers(r.Context(), input.Query)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"users": users}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getUploadURLHandler(w http.ResponseWriter, r *http.Request) {
	u, err := app.uploadService.GetUploadURL(r.Context())
	if err != nil {
		app.serverErrorMessageResponse(w, r, err, uploadservice.ErrStorage.Error())
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"uploadUrl": u.URL}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.AuthorID = app.contextGetUserID(r)

	id, err := app.blogService.CreateBlog(r.Context(), &input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Message())
		case errors.Is(err, blogservice.ErrUserForeignKey):
			app.invalidAccessTokenResponse(w, r)
		case errors.Is(err, blogservice.ErrPostCountUpdate):
			app.logError(r, err)
			err = app.writeJSON(w, http.StatusInternalServerError, envelope{"id": id, "error": "Failed to update total posts number"}, nil)
			if err != nil {
				app.serverErrorResponse(w, r, err)
			}
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"id": id}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type pageRequest struct {
	Page int `json:"page"`
}

func (app *application) latestBlogsHandler(w http.ResponseWriter, r *http.Request) {
	var input pageRequest

	err := app.parseOptionalJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.ListLatest(r.Context(), input.Page)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) latestBlogsCountHandler(w http.ResponseWriter, r *http.Request) {
	count, err := app.blogService.CountLatest(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"totalDocs": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type searchBlogsRequest struct {
	blogservice.SearchFilter
	Page int `json:"page"`
}

func (app *application) searchBlogsHandler(w http.ResponseWriter, r *http.Request) {
	var input searchBlogsRequest

	err := app.parseOptionalJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.Search(r.Context(), input.SearchFilter, input.Page)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) searchBlogsCountHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.SearchFilter

	err := app.parseOptionalJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	count, err := app.blogService.CountSearch(r.Context(), input)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"totalDocs": count}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) trendingBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.ListTrending(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
