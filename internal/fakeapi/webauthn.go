package fakeapi

import (
	"cmp"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"
)

const loginSessionCookie = "sessionid"

// passkey serialises the way the credentials list endpoint does: the owner
// and public key stay on the server.
type passkey struct {
	ID           int64      `json:"id"`
	User         int64      `json:"-"`
	CredentialID string     `json:"credential_id"`
	DeviceName   string     `json:"device_name"`
	Counter      uint32     `json:"counter"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used"`
}

func randomChallenge() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// AddPasskey registers a credential for username directly.
func (s *Server) AddPasskey(username, credentialID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[username]
	if u == nil {
		return
	}
	s.nextID++
	s.passkeys[credentialID] = &passkey{
		ID:           s.nextID,
		User:         u.ID,
		CredentialID: credentialID,
		CreatedAt:    s.clock().UTC(),
	}
}

// Passkeys returns the credential ids registered to username.
func (s *Server) Passkeys(username string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[username]
	if u == nil {
		return nil
	}
	var ids []string
	for id, pk := range s.passkeys {
		if pk.User == u.ID {
			ids = append(ids, id)
		}
	}
	return ids
}

type credentialBody struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (s *Server) handlePasskeyRegisterBegin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := readJSON(r, &req); err != nil || req.Username == "" {
		writeFieldErrors(w, map[string][]string{"username": {"This field is required."}})
		return
	}

	u := currentUser(r)
	if req.Username != u.Username {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "You can only register passkeys for your own account."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"challenge": randomChallenge(),
		"rp":        map[string]string{"name": "Ledger", "id": "localhost"},
		"user": map[string]string{
			"id":          base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(u.ID, 10))),
			"name":        u.Username,
			"displayName": u.Username,
		},
		"pubKeyCredParams": []map[string]any{
			{"type": "public-key", "alg": -7},
			{"type": "public-key", "alg": -257},
		},
		"timeout":     60000,
		"attestation": "none",
	})
}

func (s *Server) handlePasskeyRegisterComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string          `json:"username"`
		Credential *credentialBody `json:"credential"`
		DeviceName string          `json:"device_name"`
	}
	if err := readJSON(r, &req); err != nil || req.Credential == nil || req.Credential.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Registration verification failed."})
		return
	}

	u := currentUser(r)

	s.mu.Lock()
	if _, exists := s.passkeys[req.Credential.ID]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "This credential is already registered."})
		return
	}
	s.nextID++
	pk := &passkey{
		ID:           s.nextID,
		User:         u.ID,
		CredentialID: req.Credential.ID,
		DeviceName:   cmp.Or(req.DeviceName, "Passkey"),
		CreatedAt:    s.clock().UTC(),
	}
	s.passkeys[req.Credential.ID] = pk
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":       "Passkey registered successfully.",
		"credential_id": pk.ID,
	})
}

func (s *Server) handlePasskeyLoginBegin(w http.ResponseWriter, _ *http.Request) {
	sid := randomChallenge()
	challenge := randomChallenge()

	s.mu.Lock()
	s.logins[sid] = challenge
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: loginSessionCookie, Value: sid, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{
		"challenge":        challenge,
		"timeout":          60000,
		"rpId":             "localhost",
		"userVerification": "preferred",
	})
}

func (s *Server) handlePasskeyLoginComplete(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(loginSessionCookie)
	pending := false
	s.mu.Lock()
	if err == nil {
		_, pending = s.logins[cookie.Value]
		delete(s.logins, cookie.Value)
	}
	s.mu.Unlock()
	if !pending {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No authentication in progress."})
		return
	}

	var req struct {
		Credential *credentialBody `json:"credential"`
	}
	if err := readJSON(r, &req); err != nil || req.Credential == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Authentication verification failed."})
		return
	}

	s.mu.Lock()
	pk := s.passkeys[req.Credential.ID]
	if pk != nil {
		now := s.clock().UTC()
		pk.Counter++
		pk.LastUsed = &now
	}
	s.mu.Unlock()
	if pk == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Credential not found."})
		return
	}

	u := s.userByID(pk.User)
	access, refresh, err := s.issue(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access":  access,
		"refresh": refresh,
		"user":    u,
	})
}

func (s *Server) handlePasskeyList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.mu.Lock()
	list := []passkey{}
	for _, pk := range s.passkeys {
		if pk.User == u.ID {
			list = append(list, *pk)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePasskeyDelete(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, pk := range s.passkeys {
		if pk.ID == id && pk.User == u.ID {
			delete(s.passkeys, key)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Passkey deleted successfully."})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Credential not found or does not belong to you."})
}
