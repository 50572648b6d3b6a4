package handlers

const (
	MsgInvalidRequest     = "Requête invalide"
	MsgInvalidEmail       = "Format d'email invalide"
	MsgEmailRequired      = "Email requis"
	MsgPasswordRequired   = "Mot de passe requis"
	MsgInvalidCredentials = "Email ou mot de passe incorrect"
	MsgUserExists         = "Cet email est déjà utilisé"
	MsgUserNotFound       = "Utilisateur introuvable"
	MsgInternal           = "Erreur interne du serveur"

	// Lockout messages; the first one is a format string taking the
	// remaining minutes.
	MsgAccountLockedFmt = "Compte temporairement bloqué. Réessayez dans %d minutes."
	MsgTooManyAttempts  = "Trop de tentatives échouées. Compte bloqué pendant 15 minutes."
)
