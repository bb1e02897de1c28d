package service

import "legalease/internal/models"

func requireClient(p models.Principal) (string, error) {
	if id, ok := p.ClientID(); ok {
		return id, nil
	}
	if p.IsAnonymous() {
		return "", ErrUnauthenticated
	}
	return "", ErrForbidden
}

func requireLawyer(p models.Principal) (string, error) {
	if id, ok := p.LawyerID(); ok {
		return id, nil
	}
	if p.IsAnonymous() {
		return "", ErrUnauthenticated
	}
	return "", ErrForbidden
}
