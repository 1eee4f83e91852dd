package employee

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	gen := tokenGenerator{secretKey: []byte("secret"), timeout: 3 * 24 * time.Hour}

	emp := Employee{ID: 1, AcademyID: 1, Account: "teacher01", Name: "T", Email: "t@test.test"}
	_ = emp.SetPassword("pwd")

	validToken := gen.makeToken(emp)

	// generate an expired token
	dayLate := gen.timeout + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := gen.makeToken(emp)
	nowFunc = time.Now // reset

	otherEmp := emp
	otherEmp.ID = 2

	tests := []struct {
		name    string
		emp     Employee
		token   string
		wantErr error
	}{
		{name: "no token", emp: emp, wantErr: errInvalidToken},
		{name: "invalid parts len", emp: emp, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", emp: emp, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", emp: emp, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", emp: emp, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "other employee", emp: otherEmp, token: validToken, wantErr: errInvalidToken},
		{name: "expired token", emp: emp, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", emp: emp, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := gen.verifyToken(tt.emp, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	emp := Employee{ID: 4242}
	id, err := decodeUID(encodeUID(emp))
	if err != nil {
		t.Fatalf("decodeUID() error = %v", err)
	}
	if id != emp.ID {
		t.Errorf("decodeUID() = %d, want %d", id, emp.ID)
	}
	if _, err = decodeUID("%%%"); err == nil {
		t.Error("decodeUID() expected an error")
	}
}
