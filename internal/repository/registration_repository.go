package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/avillegasn/agenda-api/internal/model"
)

// RegistrationRepo provides CRUD operations for registrations. All
// timestamp fields are stored in UTC. Status transitions that must be
// serialized against concurrent requests (capacity checks, payment
// confirmation) run inside transactions with row locks.
type RegistrationRepo struct {
    db *sql.DB
}

// NewRegistrationRepo returns a new RegistrationRepo bound to the given
// database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
    if db == nil {
        panic("nil db passed to NewRegistrationRepo")
    }
    return &RegistrationRepo{db: db}
}

const registrationColumns = `id, event_id, category, attendee_type, full_name, email, phone,
    attendee_count, requested_date, requested_time, delivery, status,
    amount_cents, currency, payment_ref, email_verified, created_at, confirmed_at`

// Create inserts a registration without any capacity check. Used for
// ad-hoc bookings (consultations) that are not tied to an event row.
func (r *RegistrationRepo) Create(ctx context.Context, reg *model.Registration) error {
    const q = `INSERT INTO registrations (` + registrationColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q, insertArgs(reg)...)
    return err
}

// CreateWithCapacity inserts a registration for an event while holding a
// row lock on the event, so two concurrent submissions cannot both pass
// the capacity check. Only confirmed and pending_payment registrations
// count against capacity; abandoned and failed ones do not.
//
// Returns ErrNotFound when the event does not exist, ErrAlreadyRegistered
// when the email already holds a non-failed registration for the event,
// and ErrEventFull when the event is at capacity.
func (r *RegistrationRepo) CreateWithCapacity(ctx context.Context, reg *model.Registration, capacity int) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the event row so concurrent inserts serialize here.
    var lockedID string
    err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = ? FOR UPDATE`, *reg.EventID).Scan(&lockedID)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    if err != nil {
        return err
    }

    var dup int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM registrations WHERE event_id = ? AND email = ? AND status <> ?`,
        *reg.EventID, reg.Email, model.StatusFailed,
    ).Scan(&dup)
    if err != nil {
        return err
    }
    if dup > 0 {
        return ErrAlreadyRegistered
    }

    var active int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status IN (?, ?)`,
        *reg.EventID, model.StatusConfirmed, model.StatusPendingPayment,
    ).Scan(&active)
    if err != nil {
        return err
    }
    if active >= capacity {
        return ErrEventFull
    }

    const q = `INSERT INTO registrations (` + registrationColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    if _, err := tx.ExecContext(ctx, q, insertArgs(reg)...); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID fetches a registration. Returns ErrNotFound when missing.
func (r *RegistrationRepo) GetByID(ctx context.Context, id string) (*model.Registration, error) {
    const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`
    return scanRegistration(r.db.QueryRowContext(ctx, q, id))
}

// List returns registrations newest first, up to limit rows (or all
// rows when limit is zero or negative).
func (r *RegistrationRepo) List(ctx context.Context, limit int) ([]model.Registration, error) {
    q := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at DESC`
    var rows *sql.Rows
    var err error
    if limit > 0 {
        rows, err = r.db.QueryContext(ctx, q+` LIMIT ?`, limit)
    } else {
        rows, err = r.db.QueryContext(ctx, q)
    }
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Registration
    for rows.Next() {
        reg, err := scanRegistration(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *reg)
    }
    return out, rows.Err()
}

// ListByEventDate returns the registrations for a given requested date,
// oldest first.
func (r *RegistrationRepo) ListByEventDate(ctx context.Context, date string) ([]model.Registration, error) {
    const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE requested_date = ? ORDER BY created_at ASC`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Registration
    for rows.Next() {
        reg, err := scanRegistration(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *reg)
    }
    return out, rows.Err()
}

// CountActive counts the registrations of an event that hold capacity,
// meaning confirmed or awaiting payment.
func (r *RegistrationRepo) CountActive(ctx context.Context, eventID string) (int, error) {
    const q = `SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status IN (?, ?)`
    var n int
    err := r.db.QueryRowContext(ctx, q, eventID, model.StatusConfirmed, model.StatusPendingPayment).Scan(&n)
    return n, err
}

// Confirm moves a registration to confirmed under a row lock. The
// operation is idempotent: confirming an already confirmed registration
// reports already=true and changes nothing, so a retried webhook or a
// replayed verification link cannot double-confirm. Confirming a failed
// registration returns ErrTerminalStatus.
//
// paymentRef, when non-nil, is recorded only if no reference was stored
// before; the first confirmation wins.
func (r *RegistrationRepo) Confirm(ctx context.Context, id string, paymentRef *string, at time.Time) (already bool, err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var status string
    err = tx.QueryRowContext(ctx, `SELECT status FROM registrations WHERE id = ? FOR UPDATE`, id).Scan(&status)
    if err == sql.ErrNoRows {
        return false, ErrNotFound
    }
    if err != nil {
        return false, err
    }
    switch model.Status(status) {
    case model.StatusFailed:
        return false, ErrTerminalStatus
    case model.StatusConfirmed:
        already = true
    }

    _, err = tx.ExecContext(ctx,
        `UPDATE registrations
            SET status = ?,
                payment_ref = COALESCE(payment_ref, ?),
                confirmed_at = COALESCE(confirmed_at, ?)
          WHERE id = ?`,
        model.StatusConfirmed, paymentRef, at.UTC(), id,
    )
    if err != nil {
        return false, err
    }
    if err := tx.Commit(); err != nil {
        return false, err
    }
    committed = true
    return already, nil
}

// SetStatus performs a conditional status transition: the update only
// applies while the row is still in the expected source status. When
// the row exists but has moved on, ErrStatusConflict is returned so the
// caller can distinguish a lost race from a missing registration.
func (r *RegistrationRepo) SetStatus(ctx context.Context, id string, from, to model.Status) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE registrations SET status = ? WHERE id = ? AND status = ?`, to, id, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 1 {
        return nil
    }
    var exists int
    if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE id = ?`, id).Scan(&exists); err != nil {
        return err
    }
    if exists == 0 {
        return ErrNotFound
    }
    return ErrStatusConflict
}

// MarkEmailVerified flips the email_verified flag. It does not change
// status; the state machine decides what verification unlocks.
func (r *RegistrationRepo) MarkEmailVerified(ctx context.Context, id string) error {
    res, err := r.db.ExecContext(ctx, `UPDATE registrations SET email_verified = 1 WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    _ = n // zero rows is fine: the flag may already be set
    return nil
}

// MarkFailed moves a registration to failed. Confirmed registrations
// cannot be failed (ErrTerminalStatus); failing an already failed
// registration is a no-op.
func (r *RegistrationRepo) MarkFailed(ctx context.Context, id string) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var status string
    err = tx.QueryRowContext(ctx, `SELECT status FROM registrations WHERE id = ? FOR UPDATE`, id).Scan(&status)
    if err == sql.ErrNoRows {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    switch model.Status(status) {
    case model.StatusConfirmed:
        return ErrTerminalStatus
    case model.StatusFailed:
        committed = true
        return tx.Commit()
    }

    if _, err := tx.ExecContext(ctx, `UPDATE registrations SET status = ? WHERE id = ?`, model.StatusFailed, id); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func insertArgs(reg *model.Registration) []interface{} {
    var requestedTime interface{}
    if reg.RequestedTime != nil {
        requestedTime = reg.RequestedTime.UTC()
    }
    var confirmedAt interface{}
    if reg.ConfirmedAt != nil {
        confirmedAt = reg.ConfirmedAt.UTC()
    }
    return []interface{}{
        reg.ID, reg.EventID, reg.Category, reg.AttendeeType, reg.FullName, reg.Email, reg.Phone,
        reg.AttendeeCount, reg.RequestedDate, requestedTime, reg.Delivery, reg.Status,
        reg.AmountCents, reg.Currency, reg.PaymentRef, reg.EmailVerified, reg.CreatedAt.UTC(), confirmedAt,
    }
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanRegistration(row rowScanner) (*model.Registration, error) {
    var reg model.Registration
    var eventID, paymentRef sql.NullString
    var requestedTime, confirmedAt sql.NullTime
    err := row.Scan(
        &reg.ID, &eventID, &reg.Category, &reg.AttendeeType, &reg.FullName, &reg.Email, &reg.Phone,
        &reg.AttendeeCount, &reg.RequestedDate, &requestedTime, &reg.Delivery, &reg.Status,
        &reg.AmountCents, &reg.Currency, &paymentRef, &reg.EmailVerified, &reg.CreatedAt, &confirmedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if eventID.Valid {
        v := eventID.String
        reg.EventID = &v
    }
    if paymentRef.Valid {
        v := paymentRef.String
        reg.PaymentRef = &v
    }
    if requestedTime.Valid {
        t := requestedTime.Time
        reg.RequestedTime = &t
    }
    if confirmedAt.Valid {
        t := confirmedAt.Time
        reg.ConfirmedAt = &t
    }
    return &reg, nil
}
