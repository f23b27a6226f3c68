package reporttemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jan-server/services/report-api/internal/domain/report"
	domain "jan-server/services/report-api/internal/domain/reporttemplate"
	"jan-server/services/report-api/internal/infrastructure/database/entities"
)

func TestFilteredTemplatesQuery(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=report dbname=report_api sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	org, category := "org-1", report.CategoryProcurement
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []entities.Template
		return filteredTemplates(tx, &domain.Filter{OrganizationID: &org, Category: &category, ActiveOnly: true}).Find(&rows)
	})
	assert.Contains(t, sql, `"report_templates"`)
	assert.Contains(t, sql, "organization_id = 'org-1'")
	assert.Contains(t, sql, "category = 'procurement'")
	assert.Contains(t, sql, "is_active = true")
}

func TestTemplateEntityKeepsStructure(t *testing.T) {
	seeded := domain.DemoTemplates()[0]
	seeded.ID = "tpl_1"

	entity, err := mapTemplateToEntity(seeded)
	require.NoError(t, err)
	assert.Equal(t, "tpl_1", entity.PublicID)

	restored, err := mapTemplateFromEntity(entity)
	require.NoError(t, err)
	assert.Equal(t, seeded.Structure, restored.Structure)
	require.Len(t, restored.Fields, 3)
	assert.JSONEq(t, "1", string(restored.Fields[1].DefaultValue))
	assert.Equal(t, 500, *restored.Fields[0].Validation.MaxLength)
}
