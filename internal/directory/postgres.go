// Package directory provides the household directory adapters behind
// core.Directory: a PostgreSQL store for production and an in-memory store
// for local runs and tests.
package directory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/jemaat/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// SQLSTATE codes mapped onto core sentinels.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PostgresDirectory stores households in the families and members tables.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

var _ core.Directory = (*PostgresDirectory)(nil)

// NewPostgresDirectory creates a directory over pool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

// EnsureSchema creates the directory tables if they do not exist.
func (d *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (d *PostgresDirectory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// ============================================================================
// Households
// ============================================================================

func (d *PostgresDirectory) ExistsByHouseholdNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM families WHERE nomor_kk = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, wrap("check family", err)
	}
	return exists, nil
}

// CreateHousehold inserts the family row and all member rows in one
// transaction. A unique violation on nomor_kk is reported as
// core.ErrAlreadyRegistered.
func (d *PostgresDirectory) CreateHousehold(ctx context.Context, h *core.Household) (string, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id pgtype.UUID
	err = tx.QueryRow(ctx, `
INSERT INTO families (nomor_kk, alamat, wilayah, status, registered_at, verified_at, verified_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		h.Number, ToPgText(h.Address), string(h.Sector), string(h.Status),
		h.RegisteredAt, ToPgTimestamptz(h.VerifiedAt), ToPgText(h.VerifiedBy),
	).Scan(&id)
	if err != nil {
		return "", wrap("insert family", err)
	}

	rows := make([][]any, len(h.Members))
	for i, m := range h.Members {
		rows[i] = append([]any{id, int32(i + 1)}, memberValues(m)...)
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"members"},
			append([]string{"family_id", "position"}, memberColumns...),
			pgx.CopyFromRows(rows),
		); err != nil {
			return "", wrap("insert members", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit family: %w", err)
	}
	return PgUUIDToString(id), nil
}

// ListHouseholds returns every household with its members, in registration
// order.
func (d *PostgresDirectory) ListHouseholds(ctx context.Context) ([]core.Household, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+familyColumns+` FROM families ORDER BY registered_at, nomor_kk`)
	if err != nil {
		return nil, wrap("list families", err)
	}
	households, err := pgx.CollectRows(rows, scanFamily)
	if err != nil {
		return nil, wrap("scan families", err)
	}

	index := make(map[string]int, len(households))
	for i := range households {
		index[households[i].ID] = i
	}

	members, err := queryMembers(ctx, d.pool, `ORDER BY family_id, position`)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if i, ok := index[m.HouseholdID]; ok {
			households[i].Members = append(households[i].Members, m)
		}
	}
	return households, nil
}

func (d *PostgresDirectory) GetHouseholdByNumber(ctx context.Context, number string) (*core.Household, error) {
	return d.getFamily(ctx, `nomor_kk = $1`, number)
}

func (d *PostgresDirectory) GetHousehold(ctx context.Context, id string) (*core.Household, error) {
	return d.getFamily(ctx, `id = $1`, ToPgUUID(id))
}

func (d *PostgresDirectory) getFamily(ctx context.Context, where string, arg any) (*core.Household, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+familyColumns+` FROM families WHERE `+where, arg)
	if err != nil {
		return nil, wrap("get family", err)
	}
	h, err := pgx.CollectOneRow(rows, scanFamily)
	if err != nil {
		return nil, wrap("get family", err)
	}

	members, err := queryMembers(ctx, d.pool, `WHERE family_id = $1 ORDER BY position`, ToPgUUID(h.ID))
	if err != nil {
		return nil, err
	}
	h.Members = members
	return &h, nil
}

// UpdateHousehold changes the household-level fields set in patch.
func (d *PostgresDirectory) UpdateHousehold(ctx context.Context, id string, patch core.HouseholdPatch) error {
	var number, address, sector, status pgtype.Text
	if patch.Number != nil {
		number = pgtype.Text{String: *patch.Number, Valid: true}
	}
	if patch.Address != nil {
		address = pgtype.Text{String: *patch.Address, Valid: true}
	}
	if patch.Sector != nil {
		sector = pgtype.Text{String: string(*patch.Sector), Valid: true}
	}
	if patch.Status != nil {
		status = pgtype.Text{String: string(*patch.Status), Valid: true}
	}

	tag, err := d.pool.Exec(ctx, `
UPDATE families SET
    nomor_kk = COALESCE($2, nomor_kk),
    alamat   = COALESCE($3, alamat),
    wilayah  = COALESCE($4, wilayah),
    status   = COALESCE($5, status)
WHERE id = $1`,
		ToPgUUID(id), number, address, sector, status,
	)
	if err != nil {
		return wrap("update family", err)
	}
	return requireRow("update family", tag)
}

// UpdateVerificationStatus sets the status. Verified and Rejected record
// the actor and time; Pending clears them.
func (d *PostgresDirectory) UpdateVerificationStatus(ctx context.Context, id string, status core.VerificationStatus, actorID string) error {
	tag, err := d.pool.Exec(ctx, `
UPDATE families SET
    status      = $2,
    verified_at = CASE WHEN $2 = 'Pending' THEN NULL ELSE NOW() END,
    verified_by = CASE WHEN $2 = 'Pending' THEN NULL ELSE $3 END
WHERE id = $1`,
		ToPgUUID(id), string(status), ToPgText(actorID),
	)
	if err != nil {
		return wrap("update status", err)
	}
	return requireRow("update status", tag)
}

// DeleteHousehold removes the members and then the family in one
// transaction.
func (d *PostgresDirectory) DeleteHousehold(ctx context.Context, id string) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM members WHERE family_id = $1`, ToPgUUID(id)); err != nil {
		return wrap("delete members", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM families WHERE id = $1`, ToPgUUID(id))
	if err != nil {
		return wrap("delete family", err)
	}
	if err := requireRow("delete family", tag); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// ============================================================================
// Members
// ============================================================================

// AddMember appends a member after the household's existing members.
// An unknown household fails the foreign key and is reported as not found.
func (d *PostgresDirectory) AddMember(ctx context.Context, householdID string, m core.Member) (core.Member, error) {
	args := append([]any{ToPgUUID(householdID)}, memberValues(m)...)

	var id pgtype.UUID
	err := d.pool.QueryRow(ctx, `
INSERT INTO members (family_id, position, `+memberColumnList+`)
VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM members WHERE family_id = $1), `+memberPlaceholders(2)+`)
RETURNING id`, args...).Scan(&id)
	if err != nil {
		return core.Member{}, wrap("insert member", err)
	}
	m.ID = PgUUIDToString(id)
	m.HouseholdID = householdID
	return m, nil
}

func (d *PostgresDirectory) GetMember(ctx context.Context, id string) (core.Member, error) {
	members, err := queryMembers(ctx, d.pool, `WHERE id = $1`, ToPgUUID(id))
	if err != nil {
		return core.Member{}, err
	}
	if len(members) == 0 {
		return core.Member{}, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	return members[0], nil
}

// UpdateMember replaces every member field. The household and position are
// kept.
func (d *PostgresDirectory) UpdateMember(ctx context.Context, m core.Member) error {
	args := append([]any{ToPgUUID(m.ID)}, memberValues(m)...)

	set := make([]string, len(memberColumns))
	for i, col := range memberColumns {
		set[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	tag, err := d.pool.Exec(ctx, `UPDATE members SET `+strings.Join(set, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return wrap("update member", err)
	}
	return requireRow("update member", tag)
}

func (d *PostgresDirectory) DeleteMember(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, ToPgUUID(id))
	if err != nil {
		return wrap("delete member", err)
	}
	return requireRow("delete member", tag)
}

// ----------------------------------------------------------------------------
// Internal helper functions
// ----------------------------------------------------------------------------

const familyColumns = `id, nomor_kk, alamat, wilayah, status, registered_at, verified_at, verified_by`

var memberColumns = []string{
	"nama_lengkap", "nik", "tempat_lahir", "tanggal_lahir", "jenis_kelamin",
	"hubungan", "status_gerejawi", "alamat_domisili", "status_pernikahan",
	"no_telepon", "email", "pekerjaan", "golongan_darah", "catatan_pelayanan",
}

var memberColumnList = strings.Join(memberColumns, ", ")

// memberPlaceholders returns "$start, $start+1, ..." for every member column.
func memberPlaceholders(start int) string {
	out := make([]string, len(memberColumns))
	for i := range memberColumns {
		out[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(out, ", ")
}

// memberValues returns m's fields in memberColumns order.
func memberValues(m core.Member) []any {
	return []any{
		m.FullName,
		ToPgText(m.NationalID),
		ToPgText(m.BirthPlace),
		ToPgDate(m.BirthDate),
		ToPgText(string(m.Gender)),
		string(m.Relationship),
		string(m.ChurchStatus),
		ToPgText(m.DomicileAddress),
		ToPgText(string(m.MaritalStatus)),
		ToPgText(m.Phone),
		ToPgText(m.Email),
		ToPgText(m.Occupation),
		ToPgText(string(m.BloodType)),
		ToPgText(m.MinistryNotes),
	}
}

func scanFamily(row pgx.CollectableRow) (core.Household, error) {
	var (
		id           pgtype.UUID
		number       string
		address      pgtype.Text
		sector       string
		status       string
		registeredAt pgtype.Timestamptz
		verifiedAt   pgtype.Timestamptz
		verifiedBy   pgtype.Text
	)
	if err := row.Scan(&id, &number, &address, &sector, &status, &registeredAt, &verifiedAt, &verifiedBy); err != nil {
		return core.Household{}, err
	}
	return core.Household{
		ID:           PgUUIDToString(id),
		Number:       number,
		Address:      PgTextToString(address),
		Sector:       core.Sector(sector),
		Status:       core.VerificationStatus(status),
		RegisteredAt: registeredAt.Time,
		VerifiedAt:   PgTimestamptzToPtr(verifiedAt),
		VerifiedBy:   PgTextToString(verifiedBy),
	}, nil
}

func queryMembers(ctx context.Context, db DBTX, clause string, args ...any) ([]core.Member, error) {
	rows, err := db.Query(ctx, `SELECT id, family_id, `+memberColumnList+` FROM members `+clause, args...)
	if err != nil {
		return nil, wrap("list members", err)
	}
	members, err := pgx.CollectRows(rows, scanMember)
	if err != nil {
		return nil, wrap("scan members", err)
	}
	return members, nil
}

func scanMember(row pgx.CollectableRow) (core.Member, error) {
	var (
		id, familyID                               pgtype.UUID
		fullName, relationship, churchStatus       string
		nik, birthPlace, gender, domicile, marital pgtype.Text
		phone, email, occupation, blood, notes     pgtype.Text
		birthDate                                  pgtype.Date
	)
	err := row.Scan(
		&id, &familyID,
		&fullName, &nik, &birthPlace, &birthDate, &gender,
		&relationship, &churchStatus, &domicile, &marital,
		&phone, &email, &occupation, &blood, &notes,
	)
	if err != nil {
		return core.Member{}, err
	}
	return core.Member{
		ID:              PgUUIDToString(id),
		HouseholdID:     PgUUIDToString(familyID),
		FullName:        fullName,
		NationalID:      PgTextToString(nik),
		BirthPlace:      PgTextToString(birthPlace),
		BirthDate:       PgDateToString(birthDate),
		Gender:          core.Gender(PgTextToString(gender)),
		Relationship:    core.Relationship(relationship),
		ChurchStatus:    core.ChurchStatus(churchStatus),
		DomicileAddress: PgTextToString(domicile),
		MaritalStatus:   core.MaritalStatus(PgTextToString(marital)),
		Phone:           PgTextToString(phone),
		Email:           PgTextToString(email),
		Occupation:      PgTextToString(occupation),
		BloodType:       core.BloodType(PgTextToString(blood)),
		MinistryNotes:   PgTextToString(notes),
	}, nil
}

// wrap maps driver errors onto the core sentinels.
func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w", op, core.ErrAlreadyRegistered)
	case errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation, errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func requireRow(op string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
