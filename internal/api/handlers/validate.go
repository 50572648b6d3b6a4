package handlers

func (h *Handler) validateCredentials(req credentialsRequest) (string, bool) {
	if req.Email == "" {
		return MsgEmailRequired, false
	}

	if err := h.validator.Var(req.Email, "email"); err != nil {
		return MsgInvalidEmail, false
	}

	if req.Password == "" {
		return MsgPasswordRequired, false
	}

	return "", true
}

func (h *Handler) validateEmail(email string) (string, bool) {
	if email == "" {
		return MsgEmailRequired, false
	}

	if err := h.validator.Var(email, "email"); err != nil {
		return MsgInvalidEmail, false
	}

	return "", true
}
