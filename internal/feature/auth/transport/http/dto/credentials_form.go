// Package dto defines the form bindings for the auth feature's HTTP transport layer.
package dto

// CredentialsForm is the body of POST /login and POST /register.
// max counts characters; the 72-byte bcrypt limit is checked by the auth usecase.
type CredentialsForm struct {
	UserName string `form:"username" binding:"required,max=50"`
	Password string `form:"password" binding:"required,max=72"`
}

// Redacted returns a copy safe to hand back to a template.
func (f CredentialsForm) Redacted() CredentialsForm {
	return CredentialsForm{UserName: f.UserName}
}
