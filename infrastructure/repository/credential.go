package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "github.com/lib/pq"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/database/postgres"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const credentialsTable = "platform_credentials"

type CredentialRepository interface {
	GetActiveCredential(teamID string, platform domain.Platform) (*domain.Credential, error)
	GetCredentialByID(id string) (*domain.Credential, error)
	ListActiveCredentials(platforms []domain.Platform) ([]*domain.Credential, error)
	SaveCredential(credential *domain.Credential) error
	UpdateTokens(id string, tokens *domain.TokenSet, refreshedAt time.Time) error
	UpdateLastSyncedAt(id string, syncedAt time.Time) error
	DeactivateCredential(id string) error
}

type credentialRepository struct {
	conn *postgres.Connection
}

func NewCredentialRepository(conn *postgres.Connection) CredentialRepository {
	return &credentialRepository{
		conn: conn,
	}
}

const credentialColumns = "id, team_id, platform, account_id, access_token, refresh_token, " +
	"expires_at, scopes, is_active, last_refreshed_at, last_synced_at, created_at, updated_at"

func (r *credentialRepository) GetActiveCredential(teamID string, platform domain.Platform) (*domain.Credential, error) {
	return r.getCredential(squirrel.Eq{
		"team_id":   teamID,
		"platform":  platform,
		"is_active": true,
	})
}

func (r *credentialRepository) GetCredentialByID(id string) (*domain.Credential, error) {
	return r.getCredential(squirrel.Eq{"id": id})
}

func (r *credentialRepository) getCredential(whereClause map[string]interface{}) (*domain.Credential, error) {
	query, args, err := squirrel.
		Select(credentialColumns).
		From(credentialsTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	credential, err := r.deserializeCredential(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return credential, nil
}

func (r *credentialRepository) ListActiveCredentials(platforms []domain.Platform) ([]*domain.Credential, error) {
	queryBuilder := squirrel.
		Select(credentialColumns).
		From(credentialsTable).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("team_id ASC, platform ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(platforms) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"platform": platforms})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	credentials := make([]*domain.Credential, 0)

	for rows.Next() {
		credential, err := r.deserializeCredential(rows)
		if err != nil {
			return nil, err
		}

		credentials = append(credentials, credential)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return credentials, nil
}

// SaveCredential grava uma nova credencial ativa. A desativação da credencial
// anterior do mesmo (team, platform) e a inserção acontecem na mesma transação,
// preservando a invariante de no máximo uma credencial ativa por par.
func (r *credentialRepository) SaveCredential(credential *domain.Credential) error {
	deactivateSQL, deactivateArgs, err := squirrel.
		Update(credentialsTable).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"team_id":   credential.TeamID,
			"platform":  credential.Platform,
			"is_active": true,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	insertSQL, insertArgs, err := squirrel.
		Insert(credentialsTable).
		Columns("id", "team_id", "platform", "account_id", "access_token", "refresh_token",
			"expires_at", "scopes", "is_active", "last_refreshed_at").
		Values(
			credential.ID,
			credential.TeamID,
			credential.Platform,
			credential.AccountID,
			credential.AccessToken,
			credential.RefreshToken,
			credential.ExpiresAt,
			pq.Array(credential.Scopes),
			true,
			credential.LastRefreshedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.conn.RunInTransaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(deactivateSQL, deactivateArgs...); err != nil {
			return fmt.Errorf("erro ao desativar a credencial anterior: %w", err)
		}

		if _, err := tx.Exec(insertSQL, insertArgs...); err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
			}
			return fmt.Errorf("erro ao inserir a credencial: %w", err)
		}

		return nil
	})
}

func (r *credentialRepository) UpdateTokens(id string, tokens *domain.TokenSet, refreshedAt time.Time) error {
	queryBuilder := squirrel.
		Update(credentialsTable).
		Set("access_token", tokens.AccessToken).
		Set("expires_at", tokens.ExpiresAt).
		Set("last_refreshed_at", refreshedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	// Provedores que não rotacionam o refresh token o omitem na resposta;
	// nesse caso o valor armazenado é mantido
	if tokens.RefreshToken != nil {
		queryBuilder = queryBuilder.Set("refresh_token", *tokens.RefreshToken)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return checkAffected(result)
}

func (r *credentialRepository) UpdateLastSyncedAt(id string, syncedAt time.Time) error {
	query, args, err := squirrel.
		Update(credentialsTable).
		Set("last_synced_at", syncedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return checkAffected(result)
}

// DeactivateCredential faz o soft-delete da credencial. O registro permanece
// no banco para auditoria; nenhuma credencial é removida fisicamente.
func (r *credentialRepository) DeactivateCredential(id string) error {
	query, args, err := squirrel.
		Update(credentialsTable).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "is_active": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *credentialRepository) deserializeCredential(row scanner) (*domain.Credential, error) {
	credential := &domain.Credential{}
	var platform string

	if err := row.Scan(
		&credential.ID,
		&credential.TeamID,
		&platform,
		&credential.AccountID,
		&credential.AccessToken,
		&credential.RefreshToken,
		&credential.ExpiresAt,
		pq.Array(&credential.Scopes),
		&credential.IsActive,
		&credential.LastRefreshedAt,
		&credential.LastSyncedAt,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	); err != nil {
		return nil, err
	}

	credential.Platform = domain.Platform(platform)

	return credential, nil
}
