package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePattern_EscapaComodines(t *testing.T) {
	assert.Equal(t, "%leche%", likePattern("  leche "))
	assert.Equal(t, `%50\%%`, likePattern("50%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}

func TestErroresDeConstraint(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"})

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("otro")))
}

func TestMigracionesEmbebidas(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	sql, err := migrationsFS.ReadFile(names[0])
	require.NoError(t, err)
	for _, table := range []string{"items", "stock_movements", "purchase_order_lines", "item_suppliers"} {
		assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

type fakeResolver struct {
	ips []net.IP
	err error
}

func (f fakeResolver) LookupIP(ctx context.Context, network, host string) ([]net.IP, error) {
	return f.ips, f.err
}

func TestLookupIPv4(t *testing.T) {
	ctx := context.Background()

	ip, err := lookupIPv4(ctx, fakeResolver{}, "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", ip)

	_, err = lookupIPv4(ctx, fakeResolver{}, "::1")
	assert.Error(t, err)

	ip, err = lookupIPv4(ctx, fakeResolver{ips: []net.IP{net.ParseIP("2001:db8::1"), net.ParseIP("192.168.1.20")}}, "db")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", ip)

	_, err = lookupIPv4(ctx, fakeResolver{err: errors.New("nxdomain")}, "db")
	assert.Error(t, err)
}
