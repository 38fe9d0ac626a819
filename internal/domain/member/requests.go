package member

import (
	"net/url"
	"strconv"
)

// LoginBody is the credential payload for POST /auth/login.
type LoginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterBody creates a member account.
type RegisterBody struct {
	Username    string  `json:"username" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Firstname   string  `json:"firstname" validate:"required"`
	Lastname    string  `json:"lastname" validate:"required"`
	DateOfBirth string  `json:"dateOfBirth" validate:"required,datestr"`
	Official    string  `json:"official,omitempty"`
	Mobile      string  `json:"mobile" validate:"required"`
	HomeNumber  *string `json:"homeNumber,omitempty"`
	City        string  `json:"city" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Zipcode     string  `json:"zipcode" validate:"required"`
	Notes       *string `json:"notes,omitempty"`
	LodgeID     *string `json:"lodgeId,omitempty"`
}

// Fields flattens the body into multipart form fields.
func (b RegisterBody) Fields() map[string]string {
	f := map[string]string{
		"username":    b.Username,
		"email":       b.Email,
		"password":    b.Password,
		"firstname":   b.Firstname,
		"lastname":    b.Lastname,
		"dateOfBirth": b.DateOfBirth,
		"mobile":      b.Mobile,
		"city":        b.City,
		"address":     b.Address,
		"zipcode":     b.Zipcode,
	}
	if b.Official != "" {
		f["official"] = b.Official
	}
	if b.HomeNumber != nil {
		f["homeNumber"] = *b.HomeNumber
	}
	if b.Notes != nil {
		f["notes"] = *b.Notes
	}
	if b.LodgeID != nil {
		f["lodgeId"] = *b.LodgeID
	}
	return f
}

// ForgotPasswordBody requests a password reset mail.
type ForgotPasswordBody struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordBody completes a password reset.
type ResetPasswordBody struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserBody is a partial profile update; nil fields are left untouched.
type UpdateUserBody struct {
	Firstname   *string `json:"firstname,omitempty" validate:"omitempty,min=1"`
	Lastname    *string `json:"lastname,omitempty" validate:"omitempty,min=1"`
	DateOfBirth *string `json:"dateOfBirth,omitempty" validate:"omitempty,datestr"`
	Official    *string `json:"official,omitempty"`
	HomeNumber  *string `json:"homeNumber,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Mobile      *string `json:"mobile,omitempty"`
	City        *string `json:"city,omitempty"`
	Address     *string `json:"address,omitempty"`
	Zipcode     *string `json:"zipcode,omitempty"`
}

// AddAchievementBody awards a degree to a member.
type AddAchievementBody struct {
	AchievementID int64   `json:"achievementId" validate:"required,gt=0"`
	AwardedAt     *string `json:"awardedAt,omitempty" validate:"omitempty,datestr"`
}

// SetRolesBody replaces a member's roles.
type SetRolesBody struct {
	RoleIDs []int64 `json:"roleIds" validate:"dive,gt=0"`
}

// SetLodgeBody moves a member to a lodge; a nil LodgeID removes the link.
type SetLodgeBody struct {
	LodgeID *int64 `json:"lodgeId" validate:"omitempty,gt=0"`
}

// PostBody creates a news item.
type PostBody struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}

// UpdatePostBody is a partial news item update.
type UpdatePostBody struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

// LodgeBody creates a lodge.
type LodgeBody struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
}

// UpdateLodgeBody is a partial lodge update.
type UpdateLodgeBody struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// EstablishmentBody creates or replaces an establishment.
type EstablishmentBody struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Address     string  `json:"address" validate:"required"`
}

// EventBody creates an event.
type EventBody struct {
	Title        string  `json:"title" validate:"required"`
	Description  *string `json:"description,omitempty"`
	LodgeMeeting *bool   `json:"lodgeMeeting,omitempty"`
	Price        float64 `json:"price" validate:"gte=0"`
	StartDate    string  `json:"startDate" validate:"required,datestr"`
	EndDate      string  `json:"endDate" validate:"required,datestr"`
}

// UpdateEventBody is a partial event update.
type UpdateEventBody struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Description  *string  `json:"description,omitempty"`
	LodgeMeeting *bool    `json:"lodgeMeeting,omitempty"`
	Price        *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	StartDate    *string  `json:"startDate,omitempty" validate:"omitempty,datestr"`
	EndDate      *string  `json:"endDate,omitempty" validate:"omitempty,datestr"`
}

// LinkLodgeBody links a lodge to an event or establishment.
type LinkLodgeBody struct {
	LodgeID int64 `json:"lodgeId" validate:"required,gt=0"`
}

// RSVPBody answers an event invitation.
type RSVPBody struct {
	Status string `json:"status" validate:"required,oneof=going not-going"`
}

// MailBody drafts a mail to a lodge.
type MailBody struct {
	LID     int64  `json:"lid" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// MembershipBody starts a membership payment. Amount is only used by Swish.
type MembershipBody struct {
	Year   int     `json:"year" validate:"required,gte=1900,lte=2200"`
	Amount float64 `json:"amount,omitempty" validate:"gte=0"`
}

// ListQuery pages a list endpoint. Zero values are omitted.
type ListQuery struct {
	Limit  int
	Offset int
}

// Values encodes the query.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// UserQuery filters the member directory.
type UserQuery struct {
	ListQuery
	Name          string
	AchievementID int64
	LodgeID       int64
}

// Values encodes the query.
func (q UserQuery) Values() url.Values {
	v := q.ListQuery.Values()
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	if q.AchievementID > 0 {
		v.Set("achievementId", strconv.FormatInt(q.AchievementID, 10))
	}
	if q.LodgeID > 0 {
		v.Set("lodgeId", strconv.FormatInt(q.LodgeID, 10))
	}
	return v
}
