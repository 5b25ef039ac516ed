package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tiendaonline/backend/internal/domain"
)

type registerRequest struct {
	Nombre     string `json:"nombre"`
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
	Telefono   string `json:"telefono"`
}

type loginRequest struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"usuario"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "auth.register", err)
		return
	}
	req.Usuario = strings.TrimSpace(req.Usuario)
	if req.Nombre == "" || req.Usuario == "" || req.Contrasena == "" {
		err := fmt.Errorf("%w: nombre, usuario y contrasena son requeridos", domain.ErrValidation)
		a.respondDomainError(w, "auth.register", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Contrasena), bcrypt.DefaultCost)
	if err != nil {
		a.respondDomainError(w, "auth.register", fmt.Errorf("hash password: %w", err))
		return
	}

	user, err := a.repos.Users.Create(r.Context(), domain.NewUser{
		Name:         req.Nombre,
		Email:        req.Usuario,
		PasswordHash: string(hashed),
		Phone:        req.Telefono,
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		a.respondDomainError(w, "auth.register", err)
		return
	}

	token, err := a.generateToken(user)
	if err != nil {
		a.respondDomainError(w, "auth.register", fmt.Errorf("sign token: %w", err))
		return
	}

	a.respond(w, http.StatusCreated, "Usuario registrado correctamente", authResponse{Token: token, User: user})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondDomainError(w, "auth.login", err)
		return
	}
	if req.Usuario == "" || req.Contrasena == "" {
		err := fmt.Errorf("%w: usuario y contrasena son requeridos", domain.ErrValidation)
		a.respondDomainError(w, "auth.login", err)
		return
	}

	user, err := a.repos.Users.GetByEmail(r.Context(), strings.TrimSpace(req.Usuario))
	if errors.Is(err, domain.ErrUserNotFound) {
		a.respondDomainError(w, "auth.login", domain.ErrCredentialsInvalid)
		return
	}
	if err != nil {
		a.respondDomainError(w, "auth.login", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Contrasena)) != nil {
		a.respondDomainError(w, "auth.login", domain.ErrCredentialsInvalid)
		return
	}

	token, err := a.generateToken(user)
	if err != nil {
		a.respondDomainError(w, "auth.login", fmt.Errorf("sign token: %w", err))
		return
	}

	a.respond(w, http.StatusOK, "Inicio de sesión exitoso", authResponse{Token: token, User: user})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	user, err := a.repos.Users.GetByID(r.Context(), userIDFrom(r))
	if err != nil {
		a.respondDomainError(w, "auth.me", err)
		return
	}
	a.respond(w, http.StatusOK, "Usuario actual", user)
}
