package auth

import "strconv"

// SubjectKind says which identifier a credential carries.
type SubjectKind int

const (
	// SubjectUserID marks a token minted by the dev-login path; the wire
	// claim is the numeric user id.
	SubjectUserID SubjectKind = iota + 1
	// SubjectEmail marks a token minted by the Google sign-in path; the
	// wire claim is the user's email.
	SubjectEmail
)

// Subject is the principal a credential was issued for. The variant is
// decided at issuance time, never guessed at verification time; the wire
// format (numeric string vs. email) stays compatible with older clients.
type Subject struct {
	Kind   SubjectKind
	UserID int64
	Email  string
}

// UserSubject returns a Subject identifying a user by id.
func UserSubject(id int64) Subject {
	return Subject{Kind: SubjectUserID, UserID: id}
}

// EmailSubject returns a Subject identifying a user by email.
func EmailSubject(email string) Subject {
	return Subject{Kind: SubjectEmail, Email: email}
}

// claim encodes the subject as the token's sub claim.
func (s Subject) claim() string {
	if s.Kind == SubjectUserID {
		return strconv.FormatInt(s.UserID, 10)
	}
	return s.Email
}

// parseSubjectClaim decodes a sub claim back into a tagged Subject. A claim
// that parses as an integer is a user id; anything else is an email.
func parseSubjectClaim(claim string) Subject {
	if id, err := strconv.ParseInt(claim, 10, 64); err == nil {
		return UserSubject(id)
	}
	return EmailSubject(claim)
}
