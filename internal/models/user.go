package models

// Profile is the signed-in sender. Generation reads it for the sender block
// and signature of every prompt.
type Profile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	JobTitle       string `json:"job_title"`
	EmailSignature string `json:"email_signature"`
}

// SignatureOrDefault is what the settings screen pre-fills when no
// signature has been saved yet.
func (p Profile) SignatureOrDefault() string {
	if p.EmailSignature != "" {
		return p.EmailSignature
	}
	return "Best regards,\n" + p.FullName
}

type ProfilePatch struct {
	JobTitle       *string `json:"job_title,omitempty"`
	EmailSignature *string `json:"email_signature,omitempty"`
}
