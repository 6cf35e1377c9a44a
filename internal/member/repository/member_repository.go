package repository

import (
	"context"
	"errors"
	"fmt"

	"focushub/internal/member/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

const createMemberTable = `
CREATE TABLE IF NOT EXISTS member (
	id         BIGSERIAL PRIMARY KEY,
	member_id  TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'student',
	avatar     TEXT NOT NULL DEFAULT '',
	status     SMALLINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// MemberRepository definition get Member info
type MemberRepository interface {
	CreateUser(ctx context.Context, user *domain.Member) error
	UpdateMemberStatus(ctx context.Context, user *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

// Migrate creates the member table when missing
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, createMemberTable)
	return err
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO member(member_id, name, email, password, role, avatar) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at",
		member.MemberID, member.Name, member.Email, member.Password, member.Role, member.Avatar,
	).Scan(&member.ID, &member.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: user already exists", domain.ErrConflict)
	}
	return err
}

func (r *memberRepository) UpdateMemberStatus(ctx context.Context, member *domain.Member) error {
	tag, err := r.db.Exec(ctx, "UPDATE member SET status = $1 WHERE member_id = $2", int16(member.Status), member.MemberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: member %s", domain.ErrNotFound, member.MemberID)
	}
	return nil
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT id, member_id, name, email, password, role, avatar, status, created_at FROM member WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}
	if memberQuery.MemberID != nil {
		queryStr += fmt.Sprintf(" AND member_id = $%d", paramCount)
		params = append(params, *memberQuery.MemberID)
		paramCount++
	}
	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
	}

	member, err := scanMember(r.db.QueryRow(ctx, queryStr, params...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no member found with given criteria", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, member_id, name, email, password, role, avatar, status, created_at FROM member WHERE status < $1 ORDER BY name",
		int16(domain.MemberStatusBan),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	var status int16
	if err := row.Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &m.Password, &m.Role, &m.Avatar, &status, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Status = domain.MemberStatus(status)
	return &m, nil
}
