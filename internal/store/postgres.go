package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagen/channelvault/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const channelColumns = `id, channel_id, name, stream_url, logo_url, category, language,
	country_code, epg_id, is_active, created_at, updated_at`

// UpsertChannel inserts or unconditionally overwrites a channel by its
// external channel id. The partial unique index on channel_id (excluding
// playlist rows with an empty id) makes this a single atomic operation.
func (p *Postgres) UpsertChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO channels (channel_id, name, stream_url, logo_url, category, language, country_code, epg_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (channel_id) WHERE channel_id <> '' DO UPDATE SET
		   name = EXCLUDED.name, stream_url = EXCLUDED.stream_url,
		   logo_url = EXCLUDED.logo_url, category = EXCLUDED.category,
		   language = EXCLUDED.language, country_code = EXCLUDED.country_code,
		   updated_at = NOW()
		 RETURNING id`,
		ch.ChannelID, ch.Name, ch.StreamURL, ch.LogoURL, ch.Category, ch.Language, ch.CountryCode, ch.EpgID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("UpsertChannel: %w", err)
	}
	return id, nil
}

// UpsertPlaylistChannel inserts or updates a playlist-sourced channel keyed
// by (name, country_code).
func (p *Postgres) UpsertPlaylistChannel(ctx context.Context, ch *models.Channel) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO channels (channel_id, name, stream_url, logo_url, category, country_code)
		 VALUES ('', $1, $2, $3, $4, $5)
		 ON CONFLICT (name, country_code) WHERE channel_id = '' DO UPDATE SET
		   stream_url = EXCLUDED.stream_url, logo_url = EXCLUDED.logo_url,
		   category = EXCLUDED.category, updated_at = NOW()
		 RETURNING id`,
		ch.Name, ch.StreamURL, ch.LogoURL, ch.Category, ch.CountryCode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("UpsertPlaylistChannel: %w", err)
	}
	return id, nil
}

func (p *Postgres) GetChannelByID(ctx context.Context, id int64) (*models.Channel, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
	ch, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetChannelByID: %w", err)
	}
	return ch, nil
}

func (p *Postgres) ListActiveChannelsByCountry(ctx context.Context, code string) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+channelColumns+` FROM channels
		 WHERE country_code = $1 AND is_active ORDER BY name`, code)
	if err != nil {
		return nil, fmt.Errorf("ListActiveChannelsByCountry: %w", err)
	}
	return scanChannels(rows)
}

func (p *Postgres) ListCategoriesByCountry(ctx context.Context, code string) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT DISTINCT category FROM channels
		 WHERE country_code = $1 AND is_active AND category IS NOT NULL
		 ORDER BY category`, code)
	if err != nil {
		return nil, fmt.Errorf("ListCategoriesByCountry: %w", err)
	}
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("ListCategoriesByCountry scan: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (p *Postgres) ListChannelsByCategory(ctx context.Context, code, category string) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+channelColumns+` FROM channels
		 WHERE country_code = $1 AND is_active AND category = $2 ORDER BY name`,
		code, category)
	if err != nil {
		return nil, fmt.Errorf("ListChannelsByCategory: %w", err)
	}
	return scanChannels(rows)
}

func (p *Postgres) SearchChannels(ctx context.Context, code, query string) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+channelColumns+` FROM channels
		 WHERE country_code = $1 AND is_active AND name ILIKE '%' || $2 || '%'
		 ORDER BY name`,
		code, query)
	if err != nil {
		return nil, fmt.Errorf("SearchChannels: %w", err)
	}
	return scanChannels(rows)
}

func (p *Postgres) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	var c models.Country
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, code, flag_url, is_active, created_at FROM countries WHERE code = $1`,
		code,
	).Scan(&c.ID, &c.Name, &c.Code, &c.FlagURL, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetCountryByCode: %w", err)
	}
	return &c, nil
}

func (p *Postgres) CreateCountry(ctx context.Context, c *models.Country) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO countries (name, code, flag_url) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Code, c.FlagURL,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateCountry: %w", err)
	}
	return id, nil
}

func (p *Postgres) UpdateCountry(ctx context.Context, c *models.Country) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE countries SET name = $1, flag_url = $2 WHERE code = $3`,
		c.Name, c.FlagURL, c.Code)
	if err != nil {
		return fmt.Errorf("UpdateCountry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListActiveCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, code, flag_url, is_active, created_at
		 FROM countries WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ListActiveCountries: %w", err)
	}
	defer rows.Close()
	var countries []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.FlagURL, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListActiveCountries scan: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// --- scan helpers ---

func scanChannel(row pgx.Row) (*models.Channel, error) {
	var ch models.Channel
	err := row.Scan(&ch.ID, &ch.ChannelID, &ch.Name, &ch.StreamURL, &ch.LogoURL,
		&ch.Category, &ch.Language, &ch.CountryCode, &ch.EpgID, &ch.IsActive,
		&ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func scanChannels(rows pgx.Rows) ([]models.Channel, error) {
	defer rows.Close()
	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}
