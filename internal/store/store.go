package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopadmin/internal/model"
	"github.com/iurnickita/shopadmin/internal/store/config"
)

type Store interface {
	MemberGet(ctx context.Context, id string) (model.Member, error)
	MemberGetByLogin(ctx context.Context, login string) (model.Member, error)
	MemberPut(ctx context.Context, member model.Member) error
	OrderCountByStatus(ctx context.Context, excludes model.StatusSet) (map[model.OrderStatus]int, error)
	OrderStatusGet(ctx context.Context, excludes model.StatusSet) ([]model.OrderStatusInfo, error)
	OrderGetByDate(ctx context.Context, from time.Time, to time.Time, excludes model.StatusSet) ([]model.Order, error)
	OrderSalesGet(ctx context.Context, from time.Time, to time.Time, excludes model.StatusSet) (decimal.Decimal, int, error)
	ProductCountNonStock(ctx context.Context) (int, error)
	ProductCount(ctx context.Context) (int, error)
	CustomerCountRegular(ctx context.Context) (int, error)
	Close() error
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
)

type store struct {
	database *sql.DB
}

func NewStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		err = migrate(db)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &store{
		database: db,
	}, nil
}

// Таблицы принадлежат магазину, модуль их только читает.
// Создание нужно для локального запуска и тестов.
func migrate(db *sql.DB) error {
	statements := []string{
		"CREATE TABLE IF NOT EXISTS mtb_order_status (" +
			" id SMALLINT PRIMARY KEY," +
			" name VARCHAR (255) NOT NULL," +
			" sort_no SMALLINT NOT NULL" +
			" );",
		"CREATE TABLE IF NOT EXISTS dtb_order (" +
			" id SERIAL PRIMARY KEY," +
			" order_status_id SMALLINT NOT NULL," +
			" order_date TIMESTAMPTZ," +
			" payment_total NUMERIC (12, 2) NOT NULL DEFAULT 0" +
			" );",
		"CREATE INDEX IF NOT EXISTS dtb_order_order_date_idx ON dtb_order (order_date);",
		"CREATE TABLE IF NOT EXISTS dtb_product (" +
			" id SERIAL PRIMARY KEY," +
			" product_status_id SMALLINT NOT NULL" +
			" );",
		"CREATE TABLE IF NOT EXISTS dtb_product_class (" +
			" id SERIAL PRIMARY KEY," +
			" product_id INTEGER NOT NULL REFERENCES dtb_product (id)," +
			" stock NUMERIC (10, 0)," +
			" stock_unlimited BOOLEAN NOT NULL DEFAULT FALSE" +
			" );",
		"CREATE TABLE IF NOT EXISTS dtb_customer (" +
			" id SERIAL PRIMARY KEY," +
			" customer_status_id SMALLINT NOT NULL" +
			" );",
		"CREATE TABLE IF NOT EXISTS dtb_member (" +
			" id SERIAL PRIMARY KEY," +
			" login_id VARCHAR (255) NOT NULL UNIQUE," +
			" name VARCHAR (255) NOT NULL DEFAULT ''," +
			" password VARCHAR (255) NOT NULL," +
			" salt VARCHAR (255) NOT NULL DEFAULT ''" +
			" );",
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (store *store) Close() error {
	return store.database.Close()
}

func (store *store) MemberGet(ctx context.Context, id string) (model.Member, error) {
	memberID, err := strconv.Atoi(id)
	if err != nil {
		return model.Member{}, ErrNoRows
	}
	row := store.database.QueryRowContext(ctx,
		"SELECT id, login_id, name, password, salt FROM dtb_member"+
			" WHERE id = $1",
		memberID)
	return scanMember(row)
}

func (store *store) MemberGetByLogin(ctx context.Context, login string) (model.Member, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT id, login_id, name, password, salt FROM dtb_member"+
			" WHERE login_id = $1",
		login)
	return scanMember(row)
}

func scanMember(row *sql.Row) (model.Member, error) {
	var member model.Member
	var id int
	err := row.Scan(&id,
		&member.Login,
		&member.Name,
		&member.Password,
		&member.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, ErrNoRows
		}
		return model.Member{}, err
	}
	member.ID = strconv.Itoa(id)
	return member, nil
}

func (store *store) MemberPut(ctx context.Context, member model.Member) error {
	memberID, err := strconv.Atoi(member.ID)
	if err != nil {
		return ErrNoRows
	}

	//Обновление учетной записи
	res, err := store.database.ExecContext(ctx,
		"UPDATE dtb_member"+
			" SET login_id = $1, name = $2, password = $3, salt = $4"+
			" WHERE id = $5",
		member.Login,
		member.Name,
		member.Password,
		member.Salt,
		memberID)
	if err != nil {
		// Проверка: логин занят
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return ErrAlreadyExists
			}
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

func (store *store) OrderCountByStatus(ctx context.Context, excludes model.StatusSet) (map[model.OrderStatus]int, error) {
	//Количество заказов по статусам
	rows, err := store.database.QueryContext(ctx,
		"SELECT order_status_id AS status, COUNT(id) AS count"+
			" FROM dtb_order"+
			" WHERE NOT (order_status_id = ANY($1))"+
			" GROUP BY order_status_id"+
			" ORDER BY order_status_id",
		excludes.Int32s())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status model.OrderStatus
		var count int
		err := rows.Scan(&status, &count)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (store *store) OrderStatusGet(ctx context.Context, excludes model.StatusSet) ([]model.OrderStatusInfo, error) {
	//Справочник статусов без исключенных
	rows, err := store.database.QueryContext(ctx,
		"SELECT id, name, sort_no"+
			" FROM mtb_order_status"+
			" WHERE NOT (id = ANY($1))"+
			" ORDER BY sort_no ASC",
		excludes.Int32s())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []model.OrderStatusInfo{}
	for rows.Next() {
		var status model.OrderStatusInfo
		err := rows.Scan(&status.ID, &status.Name, &status.SortNo)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return statuses, nil
}

func (store *store) OrderGetByDate(ctx context.Context, from time.Time, to time.Time, excludes model.StatusSet) ([]model.Order, error) {
	//Заказы за период, границы включительно
	rows, err := store.database.QueryContext(ctx,
		"SELECT id, order_status_id, order_date, payment_total"+
			" FROM dtb_order"+
			" WHERE order_date >= $1"+
			"   AND order_date <= $2"+
			"   AND NOT (order_status_id = ANY($3))"+
			" ORDER BY order_date",
		from,
		to,
		excludes.Int32s())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(&order.ID,
			&order.Status,
			&order.OrderDate,
			&order.PaymentTotal)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// OrderSalesGet sums payment totals over the half-open range [from, to).
// The query has no GROUP BY, so it always yields exactly one row.
func (store *store) OrderSalesGet(ctx context.Context, from time.Time, to time.Time, excludes model.StatusSet) (decimal.Decimal, int, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(payment_total), 0), COUNT(id)"+
			" FROM dtb_order"+
			" WHERE order_date >= $1"+
			"   AND order_date < $2"+
			"   AND NOT (order_status_id = ANY($3))",
		from,
		to,
		excludes.Int32s())
	var amount decimal.Decimal
	var count int
	err := row.Scan(&amount, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("order sales: %w", err)
	}
	return amount, count, nil
}

func (store *store) ProductCountNonStock(ctx context.Context) (int, error) {
	//Товар считается один раз, даже если закончились несколько его вариантов
	return store.count(ctx,
		"SELECT COUNT(DISTINCT p.id)"+
			" FROM dtb_product AS p"+
			" INNER JOIN dtb_product_class AS pc ON pc.product_id = p.id"+
			" WHERE pc.stock_unlimited = $1"+
			"   AND pc.stock = 0",
		false)
}

func (store *store) ProductCount(ctx context.Context) (int, error) {
	return store.count(ctx,
		"SELECT COUNT(id)"+
			" FROM dtb_product"+
			" WHERE product_status_id = ANY($1)",
		[]int32{int32(model.ProductStatusShow), int32(model.ProductStatusHide)})
}

func (store *store) CustomerCountRegular(ctx context.Context) (int, error) {
	return store.count(ctx,
		"SELECT COUNT(id)"+
			" FROM dtb_customer"+
			" WHERE customer_status_id = $1",
		int32(model.CustomerStatusRegular))
}

func (store *store) count(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	err := store.database.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
