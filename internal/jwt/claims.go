package jwt

// Subject es la identidad que viaja en el claim "user".
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s Subject) claim() map[string]any {
	return map[string]any{
		"id":    s.ID,
		"name":  s.Name,
		"email": s.Email,
		"role":  s.Role,
	}
}

// subjectFromClaims lee el claim "user" si tiene forma de objeto.
func subjectFromClaims(claims map[string]any) *Subject {
	u, ok := claims["user"].(map[string]any)
	if !ok {
		return nil
	}
	str := func(k string) string {
		s, _ := u[k].(string)
		return s
	}
	return &Subject{ID: str("id"), Name: str("name"), Email: str("email"), Role: str("role")}
}

// Headers que el caller no puede pisar.
var reservedHeaders = map[string]struct{}{
	"alg": {},
	"typ": {},
	"kid": {},
}

// HeaderAuthMethod registra con qué método de sign-on se emitió el token.
const HeaderAuthMethod = "auth_method"
