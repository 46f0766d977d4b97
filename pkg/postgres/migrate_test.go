package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations", SourceURL("migrations"))
	assert.Equal(t, "file:///srv/churn/migrations", SourceURL("/srv/churn/migrations"))
	assert.Equal(t, "file://./migrations", SourceURL("file://./migrations"))
	assert.Equal(t, "s3://bucket/migrations", SourceURL("s3://bucket/migrations"))
}
