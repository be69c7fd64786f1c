package users

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/corray333/jersey-shop/internal/service/services/usersvc"
	"github.com/corray333/jersey-shop/internal/transport/http/params"
	"github.com/corray333/jersey-shop/pkg/http/response"
)

type service interface {
	Register(ctx context.Context, p usersvc.Profile) (user.User, error)
	Login(ctx context.Context, email, password string) (usersvc.Session, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUsers(ctx context.Context, p page.Page) ([]user.User, error)
	GetLatestUsers(ctx context.Context) ([]user.User, error)
	UpdateProfile(ctx context.Context, id int64, p usersvc.Profile) (user.User, error)
	UpdateUser(ctx context.Context, id int64, p usersvc.Profile, role string) (user.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string `json:"message"`
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Token     string `json:"token"`
}

type adminUpdateRequest struct {
	usersvc.Profile
	Role string `json:"role"`
}

// Login exchanges credentials for a token.
//
// @Summary Log in
// @Tags    users
// @Accept  json
// @Produce json
// @Param   credentials body     loginRequest true "Email and password"
// @Success 200         {object} loginResponse
// @Failure 401         {object} response.ErrorBody
// @Router  /users/login [post]
func Login(w http.ResponseWriter, r *http.Request, service service) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	session, err := service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Message:   "logged in",
		ID:        session.User.ID,
		Firstname: session.User.Firstname,
		Lastname:  session.User.Lastname,
		Token:     session.Token,
	})
}

// Register creates an account with the user role.
//
// @Summary Register
// @Tags    users
// @Accept  json
// @Produce json
// @Param   user body     usersvc.Profile true "Account"
// @Success 201  {object} user.User
// @Failure 400  {object} response.ErrorBody
// @Failure 409  {object} response.ErrorBody
// @Router  /users/create [post]
func Register(w http.ResponseWriter, r *http.Request, service service) {
	var p usersvc.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.BadRequest(w, err)
		return
	}

	u, err := service.Register(r.Context(), p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, u)
}

// List returns all accounts.
//
// @Summary  List users
// @Tags     users
// @Produce  json
// @Param    limit  query int false "Page size"
// @Param    offset query int false "Rows to skip"
// @Success  200 {array} user.User
// @Security BearerAuth
// @Router   /users [get]
func List(w http.ResponseWriter, r *http.Request, service service) {
	p, err := params.Page(r)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	users, err := service.GetUsers(r.Context(), p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeUsers(w, users)
}

// Latest returns the five newest accounts.
//
// @Summary  Latest users
// @Tags     users
// @Produce  json
// @Success  200 {array} user.User
// @Security BearerAuth
// @Router   /users/latest [get]
func Latest(w http.ResponseWriter, r *http.Request, service service) {
	users, err := service.GetLatestUsers(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	writeUsers(w, users)
}

func writeUsers(w http.ResponseWriter, users []user.User) {
	if users == nil {
		users = []user.User{}
	}
	response.JSON(w, http.StatusOK, users)
}

// Profile returns the caller's account.
//
// @Summary  My profile
// @Tags     users
// @Produce  json
// @Success  200 {object} user.User
// @Security BearerAuth
// @Router   /users/profile [get]
func Profile(w http.ResponseWriter, r *http.Request, service service) {
	get(w, r, service, params.UserID(r))
}

// Get returns one account.
//
// @Summary  Get a user
// @Tags     users
// @Produce  json
// @Param    id path int true "User id"
// @Success  200 {object} user.User
// @Failure  404 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /users/{id} [get]
func Get(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	get(w, r, service, id)
}

func get(w http.ResponseWriter, r *http.Request, service service, id int64) {
	u, err := service.GetUser(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, u)
}

// UpdateProfile edits the caller's account.
//
// @Summary  Update my profile
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    user body     usersvc.Profile true "Account"
// @Success  200  {object} user.User
// @Failure  400  {object} response.ErrorBody
// @Security BearerAuth
// @Router   /users/profile/update [put]
func UpdateProfile(w http.ResponseWriter, r *http.Request, service service) {
	var p usersvc.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.BadRequest(w, err)
		return
	}

	u, err := service.UpdateProfile(r.Context(), params.UserID(r), p)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, u)
}

// Update edits any account, including its role.
//
// @Summary  Update a user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    id   path     int                true "User id"
// @Param    user body     adminUpdateRequest true "Account"
// @Success  200  {object} user.User
// @Failure  400  {object} response.ErrorBody
// @Failure  404  {object} response.ErrorBody
// @Security BearerAuth
// @Router   /users/update/{id} [put]
func Update(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	var req adminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}

	u, err := service.UpdateUser(r.Context(), id, req.Profile, req.Role)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, u)
}

// DeleteProfile removes the caller's account.
//
// @Summary  Delete my account
// @Tags     users
// @Produce  json
// @Success  200 {object} response.MessageBody
// @Failure  409 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /users/profile/delete [delete]
func DeleteProfile(w http.ResponseWriter, r *http.Request, service service) {
	remove(w, r, service, params.UserID(r))
}

// Delete removes an account.
//
// @Summary  Delete a user
// @Tags     users
// @Produce  json
// @Param    id path int true "User id"
// @Success  200 {object} response.MessageBody
// @Failure  404 {object} response.ErrorBody
// @Failure  409 {object} response.ErrorBody
// @Security BearerAuth
// @Router   /users/delete/{id} [delete]
func Delete(w http.ResponseWriter, r *http.Request, service service) {
	id, err := params.ID(r, "id")
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	remove(w, r, service, id)
}

func remove(w http.ResponseWriter, r *http.Request, service service, id int64) {
	if err := service.DeleteUser(r.Context(), id); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Message(w, "user deleted")
}
