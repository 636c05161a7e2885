package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mcoot/squadbook/internal/model"
	"github.com/mcoot/squadbook/internal/storage"
)

// Storage is a SQLite implementation of storage.Backend.
// Each Unit borrows one connection from the pool for its lifetime.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Storage implements the interface
var _ storage.Backend = (*Storage)(nil)

// Open opens (creating if needed) the database file at path.
// Call Migrate before first use of a new file.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate",
		filepath.Clean(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, oops.Code("SQLITE_OPEN_FAILED").With("path", path).Wrap(err)
	}

	return &Storage{db: db, logger: logger}, nil
}

// Open borrows a connection for a unit of work
func (s *Storage) Open(ctx context.Context) (storage.Unit, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, oops.Code("SQLITE_CONN_FAILED").Wrap(err)
	}
	return &unit{conn: conn}, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

type unit struct {
	conn   *sql.Conn
	tx     *sql.Tx
	closed bool
}

func (u *unit) Begin(ctx context.Context) error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	if u.tx != nil {
		return storage.ErrTransactionActive
	}
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	u.tx = tx
	return nil
}

func (u *unit) Commit(_ context.Context) error {
	if u.tx == nil {
		return storage.ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func (u *unit) Rollback(_ context.Context) error {
	if u.tx == nil {
		return storage.ErrNoTransaction
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil {
		return oops.Code("TX_ROLLBACK_FAILED").Wrap(err)
	}
	return nil
}

func (u *unit) Close() error {
	if u.closed {
		return storage.ErrUnitClosed
	}
	u.closed = true

	var rollbackErr error
	if u.tx != nil {
		rollbackErr = u.Rollback(context.Background())
	}
	return errors.Join(rollbackErr, u.conn.Close())
}

func (u *unit) active() (*sql.Tx, error) {
	if u.closed {
		return nil, storage.ErrUnitClosed
	}
	if u.tx == nil {
		return nil, storage.ErrNoTransaction
	}
	return u.tx, nil
}

// Player operations

const playerColumns = `id, name, last_name, market_value, country, club`

func (u *unit) SavePlayer(ctx context.Context, player *model.Player) error {
	tx, err := u.active()
	if err != nil {
		return err
	}

	if player.IsNew() {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO players (name, last_name, market_value, country, club)
			VALUES (?, ?, ?, ?, ?)`,
			player.Name, player.LastName, player.MarketValue, player.Country, player.Club)
		if err != nil {
			return oops.Code("PLAYER_INSERT_FAILED").Wrap(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return oops.Code("PLAYER_INSERT_FAILED").Wrap(err)
		}
		player.ID = model.PlayerID(id)
		return nil
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE players
		SET name = ?, last_name = ?, market_value = ?, country = ?, club = ?
		WHERE id = ?`,
		player.Name, player.LastName, player.MarketValue, player.Country, player.Club, player.ID)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").With("id", player.ID).Wrap(err)
	}
	return requireAffected(res, oops.Code("PLAYER_NOT_FOUND").With("id", player.ID))
}

func (u *unit) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	tx, err := u.active()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return oops.Code("PLAYER_DELETE_FAILED").With("id", id).Wrap(err)
	}
	return requireAffected(res, oops.Code("PLAYER_NOT_FOUND").With("id", id))
}

func (u *unit) ListPlayers(ctx context.Context) ([]model.Player, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
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
	rows, err := tx.QueryContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	if err != nil {
		return nil, oops.Code("PLAYER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return scanPlayers(rows)
}

func scanPlayers(rows *sql.Rows) ([]model.Player, error) {
	defer func() { _ = rows.Close() }()

	players := []model.Player{}
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.LastName, &p.MarketValue, &p.Country, &p.Club); err != nil {
			return nil, oops.Code("PLAYER_SCAN_FAILED").Wrap(err)
		}
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
		res, err := tx.ExecContext(ctx, `INSERT INTO users (login, password) VALUES (?, ?)`,
			user.Login, user.Password)
		if err != nil {
			return userWriteError(err, "USER_INSERT_FAILED", user)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return oops.Code("USER_INSERT_FAILED").Wrap(err)
		}
		user.ID = model.UserID(id)
		return nil
	}

	res, err := tx.ExecContext(ctx, `UPDATE users SET login = ?, password = ? WHERE id = ?`,
		user.Login, user.Password, user.ID)
	if err != nil {
		return userWriteError(err, "USER_UPDATE_FAILED", user)
	}
	return requireAffected(res, oops.Code("USER_NOT_FOUND").With("id", user.ID))
}

func (u *unit) ListUsers(ctx context.Context) ([]model.User, error) {
	tx, err := u.active()
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, login, password FROM users ORDER BY id`)
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
	rows, err := tx.QueryContext(ctx, `SELECT id, login, password FROM users WHERE id = ?`, id)
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
	rows, err := tx.QueryContext(ctx, `SELECT id, login, password FROM users WHERE login = ? ORDER BY id`, login)
	if err != nil {
		return nil, oops.Code("USER_GET_BY_LOGIN_FAILED").With("login", login).Wrap(err)
	}
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]model.User, error) {
	defer func() { _ = rows.Close() }()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Password); err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}
	return users, nil
}

func userWriteError(err error, code string, user *model.User) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return oops.Code("USER_LOGIN_TAKEN").With("login", user.Login).Wrap(model.ErrLoginTaken)
	}
	return oops.Code(code).With("login", user.Login).Wrap(err)
}

func requireAffected(res sql.Result, notFound oops.OopsErrorBuilder) error {
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("ROWS_AFFECTED_FAILED").Wrap(err)
	}
	if n == 0 {
		return notFound.Wrap(model.ErrNotFound)
	}
	return nil
}
