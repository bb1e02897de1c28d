package models

type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	PrincipalClient
	PrincipalLawyer
)

// Principal is the resolved identity behind a request. The zero value is
// Anonymous; the only way to obtain an authenticated principal is through
// ClientPrincipal or LawyerPrincipal, so a principal never carries two roles.
type Principal struct {
	kind PrincipalKind
	id   string
}

func Anonymous() Principal {
	return Principal{}
}

func ClientPrincipal(clientID string) Principal {
	if clientID == "" {
		return Anonymous()
	}
	return Principal{kind: PrincipalClient, id: clientID}
}

func LawyerPrincipal(lawyerID string) Principal {
	if lawyerID == "" {
		return Anonymous()
	}
	return Principal{kind: PrincipalLawyer, id: lawyerID}
}

// PrincipalFor maps a session role onto the matching variant.
func PrincipalFor(role Role, identityID string) Principal {
	switch role {
	case RoleClient:
		return ClientPrincipal(identityID)
	case RoleLawyer:
		return LawyerPrincipal(identityID)
	default:
		return Anonymous()
	}
}

func (p Principal) Kind() PrincipalKind { return p.kind }

func (p Principal) IsAnonymous() bool { return p.kind == PrincipalAnonymous }

func (p Principal) ClientID() (string, bool) {
	if p.kind != PrincipalClient {
		return "", false
	}
	return p.id, true
}

func (p Principal) LawyerID() (string, bool) {
	if p.kind != PrincipalLawyer {
		return "", false
	}
	return p.id, true
}

func (p Principal) Role() (Role, bool) {
	switch p.kind {
	case PrincipalClient:
		return RoleClient, true
	case PrincipalLawyer:
		return RoleLawyer, true
	default:
		return "", false
	}
}

func (p Principal) String() string {
	switch p.kind {
	case PrincipalClient:
		return "client:" + p.id
	case PrincipalLawyer:
		return "lawyer:" + p.id
	default:
		return "anonymous"
	}
}
