// Package member contains the portal's resource types as served by the
// backend. Field names mirror the backend's JSON.
package member

// Archive marks why a member left the active roll.
type Archive string

const (
	ArchiveDeceased Archive = "Deceased"
	ArchiveRetired  Archive = "Retired"
	ArchiveRemoved  Archive = "Removed"
)

// Role is a permission tag as listed by the admin API.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Lodge is a local chapter.
type Lodge struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Address     *string `json:"address,omitempty"`
}

// Establishment is a venue that lodges meet at.
type Establishment struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// UserAchievement is a degree awarded to a member.
type UserAchievement struct {
	ID        int64  `json:"id"`
	AID       int64  `json:"aid"`
	AwardedAt string `json:"awardedAt"`
	Title     string `json:"title"`
}

// User is the public member record.
type User struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	CreatedAt    string            `json:"createdAt,omitempty"`
	RevokedAt    *string           `json:"revokedAt,omitempty"`
	Picture      *string           `json:"picture,omitempty"`
	PictureURL   *string           `json:"pictureUrl,omitempty"`
	Archive      *Archive          `json:"archive,omitempty"`
	Firstname    string            `json:"firstname"`
	Lastname     string            `json:"lastname"`
	DateOfBirth  string            `json:"dateOfBirth,omitempty"`
	Official     *string           `json:"official,omitempty"`
	Mobile       string            `json:"mobile,omitempty"`
	HomeNumber   *string           `json:"homeNumber,omitempty"`
	City         string            `json:"city,omitempty"`
	Address      string            `json:"address,omitempty"`
	Zipcode      string            `json:"zipcode,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	Achievements []UserAchievement `json:"achievements,omitempty"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	switch {
	case u.Firstname != "" && u.Lastname != "":
		return u.Firstname + " " + u.Lastname
	case u.Firstname != "":
		return u.Firstname
	case u.Lastname != "":
		return u.Lastname
	}
	return u.Username
}

// Post is a news item.
type Post struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Picture     *string `json:"picture,omitempty"`
	PictureURL  *string `json:"pictureUrl,omitempty"`
}

// Event is a scheduled gathering.
type Event struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	LodgeMeeting *bool   `json:"lodgeMeeting,omitempty"`
	Price        float64 `json:"price"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
}

// EventStats summarizes invitations for an event.
type EventStats struct {
	Invited  int `json:"invited"`
	Answered int `json:"answered"`
	Going    int `json:"going"`
}

// RSVP values accepted by the backend.
const (
	RSVPGoing    = "going"
	RSVPNotGoing = "not-going"
)

// RSVP is the caller's answer for one event. Status is empty when the member
// has not answered.
type RSVP struct {
	Status string `json:"rsvp"`
}

// Mail is an internal message addressed to a lodge.
type Mail struct {
	ID      int64  `json:"id"`
	LID     int64  `json:"lid"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// InboxEntry is a delivered mail with per-recipient state.
type InboxEntry struct {
	Mail
	SentAt    string `json:"sentAt,omitempty"`
	IsRead    bool   `json:"isRead"`
	Delivered bool   `json:"delivered"`
}

// Achievement is a degree that can be awarded.
type Achievement struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	AwardedAt *string `json:"awardedAt,omitempty"`
}

// Provider selects the payment backend.
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderSwish  Provider = "swish"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Settled reports whether the payment has left the pending state.
func (s PaymentStatus) Settled() bool {
	return s != PaymentPending && s != ""
}

// MembershipPayment is a yearly fee payment.
type MembershipPayment struct {
	ID           int64          `json:"id"`
	UID          int64          `json:"uid"`
	Amount       float64        `json:"amount"`
	Year         int            `json:"year"`
	Status       PaymentStatus  `json:"status"`
	Provider     *string        `json:"provider,omitempty"`
	ProviderRef  *string        `json:"provider_ref,omitempty"`
	Currency     string         `json:"currency"`
	InvoiceToken *string        `json:"invoice_token,omitempty"`
	ExpiresAt    *string        `json:"expiresAt,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

// EventPayment is a fee payment for one event.
type EventPayment struct {
	MembershipPayment
	EID int64 `json:"eid"`
}

// Checkout is the provider handoff returned when a payment is created.
type Checkout struct {
	ClientSecret string `json:"client_secret,omitempty"`
	URL          string `json:"url,omitempty"`
	PaymentID    int64  `json:"paymentId,omitempty"`
	InvoiceToken string `json:"invoice_token,omitempty"`
	Token        string `json:"token,omitempty"`
}

// StatusToken returns whichever status token the provider handed back.
func (c Checkout) StatusToken() string {
	if c.InvoiceToken != "" {
		return c.InvoiceToken
	}
	return c.Token
}

// PaymentState is the result of a status-by-token lookup.
type PaymentState struct {
	Status PaymentStatus `json:"status"`
	ID     int64         `json:"id,omitempty"`
	Year   int           `json:"year,omitempty"`
	Amount float64       `json:"amount,omitempty"`
}

// UserLodge is the lodge membership of one user; Lodge is nil when the user
// belongs to none.
type UserLodge struct {
	Lodge *Lodge `json:"lodge"`
}
