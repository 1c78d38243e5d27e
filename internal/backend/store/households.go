package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

// Invite codes skip ambiguous characters (0/O, 1/I) since people read
// them off a phone screen.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const inviteLength = 8

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

const householdCols = `id, name, invite_code, owner_id, created_at, updated_at`

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.InviteCode, &h.OwnerID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Create makes a household owned by ownerID, who becomes its first member.
func (s *HouseholdStore) Create(name, ownerID string) (*model.Household, error) {
	code, err := generateInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	h := model.Household{
		ID:         uuid.NewString(),
		Name:       name,
		InviteCode: code,
		OwnerID:    ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO households (`+householdCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.InviteCode, h.OwnerID, h.CreatedAt, h.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO household_members (id, household_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), h.ID, ownerID, model.RoleOwner, now,
	); err != nil {
		return nil, fmt.Errorf("add owner member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	return &h, nil
}

func (s *HouseholdStore) GetByID(id string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByInviteCode(code string) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE invite_code = ?`, code)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household by code: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) ListForUser(userID string) ([]model.Household, error) {
	rows, err := s.db.Query(
		`SELECT `+householdCols+` FROM households
		 WHERE id IN (SELECT household_id FROM household_members WHERE user_id = ?)
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var out []model.Household
	for rows.Next() {
		h, err := scanHousehold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// Membership returns the user's member row for the household, or nil when
// they do not belong to it.
func (s *HouseholdStore) Membership(householdID, userID string) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := s.db.QueryRow(
		`SELECT id, household_id, user_id, role, created_at
		 FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	).Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// Join adds userID to the household behind the invite code. Joining a
// household the user already belongs to succeeds without a second member
// row. Returns nil when the code matches nothing.
func (s *HouseholdStore) Join(code, userID string) (*model.Household, error) {
	h, err := s.GetByInviteCode(code)
	if err != nil || h == nil {
		return h, err
	}

	m, err := s.Membership(h.ID, userID)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return h, nil
	}

	if _, err := s.db.Exec(
		`INSERT INTO household_members (id, household_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), h.ID, userID, model.RoleMember, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("join household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) Members(householdID string) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT id, household_id, user_id, role, created_at
		 FROM household_members WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []model.HouseholdMember
	for rows.Next() {
		var m model.HouseholdMember
		if err := rows.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *HouseholdStore) Rename(id, name string) error {
	_, err := s.db.Exec(
		`UPDATE households SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("rename household: %w", err)
	}
	return nil
}

// Delete removes the household and its member rows. The caller is
// responsible for wiping the household's objects.
func (s *HouseholdStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM household_members WHERE household_id = ?`, id); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}

func (s *HouseholdStore) Leave(householdID, userID string) error {
	_, err := s.db.Exec(
		`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("leave household: %w", err)
	}
	return nil
}
