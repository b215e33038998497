package fakeapi

import (
	"net/http"
	"strings"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}

	fields := map[string][]string{}
	required := map[string]string{
		"username":  req.Username,
		"email":     req.Email,
		"password":  req.Password,
		"password2": req.Password2,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			fields[name] = append(fields[name], "This field is required.")
		}
	}
	if req.Password != "" && req.Password2 != "" && req.Password != req.Password2 {
		fields["password"] = append(fields["password"], "Password fields didn't match.")
	}

	s.mu.Lock()
	if _, taken := s.users[req.Username]; taken {
		fields["username"] = append(fields["username"], "A user with that username already exists.")
	}
	for _, u := range s.users {
		if req.Email != "" && strings.EqualFold(u.Email, req.Email) {
			fields["email"] = append(fields["email"], "A user with that email already exists.")
			break
		}
	}
	var u *User
	if len(fields) == 0 {
		u = s.addUserLocked(req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	}
	s.mu.Unlock()

	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	access, refresh, err := s.issue(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    u,
		"access":  access,
		"refresh": refresh,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return
	}

	fields := map[string][]string{}
	if req.Username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if req.Password == "" {
		fields["password"] = []string{"This field is required."}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	s.mu.Lock()
	u := s.users[req.Username]
	s.mu.Unlock()

	if u == nil || u.password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials."})
		return
	}

	access, refresh, err := s.issue(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    u,
		"access":  access,
		"refresh": refresh,
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = readJSON(r, &req)

	if req.Refresh != "" {
		s.mu.Lock()
		s.revoked[req.Refresh] = true
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out."})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(r, &req); err != nil || req.Refresh == "" {
		writeFieldErrors(w, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	invalid := func() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
	}

	if s.Revoked(req.Refresh) {
		invalid()
		return
	}
	c, err := s.signer.verify(req.Refresh, tokenTypeRefresh, s.now())
	if err != nil {
		invalid()
		return
	}
	u := s.userByID(c.UserID)
	if u == nil {
		invalid()
		return
	}

	access, refresh, err := s.issue(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	rotate := s.rotate
	if rotate {
		s.revoked[req.Refresh] = true
	}
	s.mu.Unlock()

	resp := map[string]string{"access": access}
	if rotate {
		resp["refresh"] = refresh
	}
	writeJSON(w, http.StatusOK, resp)
}
