package session

import "github.com/dmitrijs2005/notehub/internal/client/models"

// MergeUser builds the user record from the provider identity and the
// backend profile. Identity owns ID and Email; the backend owns everything
// editable, with the identity filling blanks. Admins always show the
// operator avatar. backend may be nil.
func MergeUser(ident models.Identity, backend *models.User, operatorAvatar string) *models.User {
	var b models.User
	if backend != nil {
		b = *backend.Clone()
	}

	u := &models.User{
		ID:        firstNonEmpty(ident.UID, b.ID),
		Email:     firstNonEmpty(ident.Email, b.Email),
		Name:      firstNonEmpty(b.Name, ident.DisplayName),
		AvatarURL: firstNonEmpty(b.AvatarURL, ident.PhotoURL),
		IsAdmin:   b.IsAdmin,
		Wallet:    b.Wallet,
		Semester:  b.Semester,
		Branch:    b.Branch,
		Stats:     b.Stats,
	}
	if u.IsAdmin {
		u.AvatarURL = operatorAvatar
	}
	return u
}

// MergeProfileUpdate applies a profile update response to prev. Fields the
// backend sent override prev. The avatar prefers the provider's live photo
// URL, then the response, then prev. prev must not be nil.
func MergeProfileUpdate(prev *models.User, patch *models.UserPatch, livePhotoURL, operatorAvatar string) *models.User {
	u := prev.Clone()
	if patch == nil {
		patch = &models.UserPatch{}
	}

	if patch.Name != nil && *patch.Name != "" {
		u.Name = *patch.Name
	}
	if patch.Semester != nil {
		u.Semester = *patch.Semester
	}
	if patch.Branch != nil {
		u.Branch = *patch.Branch
	}
	if patch.IsAdmin != nil {
		u.IsAdmin = *patch.IsAdmin
	}
	if patch.Wallet != nil {
		u.Wallet = *patch.Wallet
	}
	if patch.Stats != nil {
		s := *patch.Stats
		u.Stats = &s
	}

	var patched string
	if patch.AvatarURL != nil {
		patched = *patch.AvatarURL
	}
	u.AvatarURL = firstNonEmpty(livePhotoURL, patched, prev.AvatarURL)

	if u.IsAdmin {
		u.AvatarURL = operatorAvatar
	}
	return u
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
