package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
)

// Pool is the subset of *pgxpool.Pool the backend uses.
// pgxmock.PgxPoolIface satisfies it in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage is a PostgreSQL implementation of storage.Backend.
// A Unit holds one pooled transaction from Begin until Commit or Rollback.
type Storage struct {
	pool Pool
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// Config holds connection pool settings
type Config struct {
	URL      string
	MaxConns int32
}

// New connects to PostgreSQL and verifies the connection
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONFIG_INVALID").Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").Wrap(err)
	}

	return NewWithPool(pool), nil
}

// NewWithPool creates a Storage over an existing pool (for testing)
func NewWithPool(pool Pool) *Storage {
	return &Storage{pool: pool}
}

// Open returns a unit of work; the connection is taken from the pool on Begin
func (s *Storage) Open(_ context.Context) (storage.Unit, error) {
	return &unit{pool: s.pool}, nil
}

// Close closes the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

type unit struct {
	pool   Pool
	tx     pgx.Tx
	closed bool
}

func (u *unit) Begin(ctx context.Context) error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	if u.tx != nil {
		return storage.ErrTransactionActive
	}
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	u.tx = tx
	return nil
}

func (u *unit) Commit(ctx context.Context) error {
	if u.tx == nil {
		return storage.ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func (u *unit) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return storage.ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return oops.Code("TX_ROLLBACK_FAILED").Wrap(err)
	}
	return nil
}

func (u *unit) Close() error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	u.closed = true
	if u.tx != nil {
		return u.Rollback(context.Background())
	}
	return nil
}

func (u *unit) active() (pgx.Tx, error) {
	if u.closed {
		return nil, storage.ErrUnitClosed
	}
	if u.tx == nil {
		return nil, storage.ErrNoTransaction
	}
	return u.tx, nil
}

// Player operations

func (u *unit) SavePlayer(ctx context.Context, player *model.Player) error {
	tx, err := u.active()
	if err != nil {
		return err
	}

	if player.IsNew() {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO players (name, last_name, market_value, country, club)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			player.Name, player.LastName, player.MarketValue, player.Country, player.Club,
		).Scan(&id)
		if err != nil {
			return oops.Code("PLAYER_INSERT_FAILED").Wrap(err)
		}
		player.ID = model.PlayerID(id)
		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE players
		SET name = $2, last_name = $3, market_value = $4, country = $5, club = $6
		WHERE id = $1`,
		int64(player.ID), player.Name, player.LastName, player.MarketValue, player.Country, player.Club)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").With("id", player.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PLAYER_NOT_FOUND").With("id", player.ID).Wrap(model.ErrNotFound)
	}
	return nil
}

func (u *unit) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	tx, err := u.active()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM players WHERE id = $1`, int64(id))
	if err != nil {
		return oops.Code("PLAYER_DELETE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PLAYER_NOT_FOUND").With("id", id).Wrap(model.ErrNotFound)
	}
	return nil
}

func (u *unit) ListPlayers(ctx context.Context) ([]model.Player, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT id, name, last_name, market_value, country, club
		FROM players
		ORDER BY id`)
	if err != nil {
		return nil, oops.Code("PLAYER_LIST_FAILED").Wrap(err)
	}
	return scanPlayers(rows)
}

func (u *unit) PlayersByID(ctx context.Context, id model.PlayerID) ([]model.Player, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT id, name, last_name, market_value, country, club
		FROM players
		WHERE id = $1`, int64(id))
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return scanPlayers(rows)
}

func scanPlayers(rows pgx.Rows) ([]model.Player, error) {
	defer rows.Close()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		var id int64
		if err := rows.Scan(&id, &p.Name, &p.LastName, &p.MarketValue, &p.Country, &p.Club); err != nil {
			return nil, oops.Code("PLAYER_SCAN_FAILED").Wrap(err)
		}
		p.ID = model.PlayerID(id)
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PLAYER_SCAN_FAILED").Wrap(err)
	}
	return players, nil
}

// User operations

func (u *unit) SaveUser(ctx context.Context, user *model.User) error {
	tx, err := u.active()
	if err != nil {
		return err
	}

	if user.IsNew() {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO users (login, password)
			VALUES ($1, $2)
			RETURNING id`,
			user.Login, user.Password,
		).Scan(&id)
		if err != nil {
			return userWriteError(err, "USER_INSERT_FAILED", user)
		}
		user.ID = model.UserID(id)
		return nil
	}

	tag, err := tx.Exec(ctx, `UPDATE users SET login = $2, password = $3 WHERE id = $1`,
		int64(user.ID), user.Login, user.Password)
	if err != nil {
		return userWriteError(err, "USER_UPDATE_FAILED", user)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID).Wrap(model.ErrNotFound)
	}
	return nil
}

func (u *unit) ListUsers(ctx context.Context) ([]model.User, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id, login, password FROM users ORDER BY id`)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}
	return scanUsers(rows)
}

func (u *unit) UsersByID(ctx context.Context, id model.UserID) ([]model.User, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id, login, password FROM users WHERE id = $1`, int64(id))
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return scanUsers(rows)
}

func (u *unit) UsersByLogin(ctx context.Context, login string) ([]model.User, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT id, login, password FROM users WHERE login = $1 ORDER BY id`, login)
	if err != nil {
		return nil, oops.Code("USER_GET_BY_LOGIN_FAILED").With("login", login).Wrap(err)
	}
	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var id int64
		if err := rows.Scan(&id, &u.Login, &u.Password); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
		}
		u.ID = model.UserID(id)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}
	return users, nil
}

func userWriteError(err error, code string, user *model.User) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("USER_LOGIN_TAKEN").With("login", user.Login).Wrap(model.ErrLoginTaken)
	}
	return oops.Code(code).With("login", user.Login).Wrap(err)
}
