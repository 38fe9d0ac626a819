package member

import (
	"errors"
	"testing"

	"github.com/osvs/memberportal/internal/domain/apierror"
)

func strPtr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantFields map[string]string
	}{
		{
			name: "valid post",
			body: PostBody{Title: "Hello"},
		},
		{
			name:       "post missing title",
			body:       PostBody{},
			wantFields: map[string]string{"title": "is required"},
		},
		{
			name: "short password and bad email",
			body: RegisterBody{
				Username: "kalle", Email: "not-an-email", Password: "short",
				Firstname: "Kalle", Lastname: "Anka", DateOfBirth: "1990-01-02",
				Mobile: "070", City: "Ankeborg", Address: "Gatan 1", Zipcode: "12345",
			},
			wantFields: map[string]string{
				"email":    "must be a valid email address",
				"password": "must be at least 8 characters",
			},
		},
		{
			name:       "bad awardedAt",
			body:       AddAchievementBody{AchievementID: 2, AwardedAt: strPtr("yesterday")},
			wantFields: map[string]string{"awardedAt": "must be a valid date string"},
		},
		{
			name: "datetime awardedAt",
			body: AddAchievementBody{AchievementID: 2, AwardedAt: strPtr("2024-05-01T18:00:00Z")},
		},
		{
			name:       "negative role id",
			body:       SetRolesBody{RoleIDs: []int64{1, -3}},
			wantFields: map[string]string{"roleIds[1]": "must be greater than 0"},
		},
		{
			name: "nil lodge clears link",
			body: SetLodgeBody{},
		},
		{
			name:       "rsvp out of range",
			body:       RSVPBody{Status: "maybe"},
			wantFields: map[string]string{"status": "must be one of: going not-going"},
		},
		{
			name:       "partial update with empty firstname",
			body:       UpdateUserBody{Firstname: strPtr("")},
			wantFields: map[string]string{"firstname": "must be at least 1 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.body)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			var ve *apierror.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *apierror.ValidationError", err)
			}
			if len(ve.Fields) != len(tt.wantFields) {
				t.Errorf("Fields = %v, want %v", ve.Fields, tt.wantFields)
			}
			for k, want := range tt.wantFields {
				if got := ve.Fields[k]; got != want {
					t.Errorf("Fields[%q] = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestUserQuery_Values(t *testing.T) {
	q := UserQuery{ListQuery: ListQuery{Limit: 20}, Name: "Anka", LodgeID: 3}
	got := q.Values().Encode()
	want := "limit=20&lodgeId=3&name=Anka"
	if got != want {
		t.Errorf("Values() = %q, want %q", got, want)
	}
}

func TestUser_FullName(t *testing.T) {
	if got := (User{Username: "kalle"}).FullName(); got != "kalle" {
		t.Errorf("FullName() = %q, want username fallback", got)
	}
	if got := (User{Firstname: "Kalle", Lastname: "Anka"}).FullName(); got != "Kalle Anka" {
		t.Errorf("FullName() = %q", got)
	}
}

func TestCheckout_StatusToken(t *testing.T) {
	if got := (Checkout{Token: "t1"}).StatusToken(); got != "t1" {
		t.Errorf("StatusToken() = %q", got)
	}
	if got := (Checkout{Token: "t1", InvoiceToken: "inv"}).StatusToken(); got != "inv" {
		t.Errorf("StatusToken() = %q, want invoice token preferred", got)
	}
}
