package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
)

func TestSetup(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		conf := &core.Config{Database: core.DatabaseConfig{Engine: EngineInMem}}
		b, err := Setup(context.Background(), conf, schema.Default, true)
		require.NoError(t, err)
		assert.Nil(t, b.DB)
		assert.NotNil(t, b.Store)
		assert.NotNil(t, b.Users)
		assert.NoError(t, b.Close())

		data, err := b.Store.FetchAll(context.Background(), []string{schema.TableStudents})
		require.NoError(t, err)
		assert.Empty(t, data[schema.TableStudents])
	})

	t.Run("unknown engine", func(t *testing.T) {
		conf := &core.Config{Database: core.DatabaseConfig{Engine: "mysql"}}
		_, err := Setup(context.Background(), conf, schema.Default, false)
		assert.EqualError(t, err, `unknown database engine "mysql"`)
	})
}
