package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hola mundo", CleanText("  hola \t\n mundo  "))
	assert.Equal(t, `dijo "hola"`, CleanText("dijo “hola”"))
	assert.Equal(t, "no 'así'", CleanText("no ‘así’"))
	assert.Equal(t, "", CleanText("   "))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 2, CountWords("hola mundo"))
	assert.Equal(t, 10, CountWords("Como usuario quiero ver mis pedidos para conocer su estado"))
}

func TestValidStoryFormat(t *testing.T) {
	assert.True(t, ValidStoryFormat("Como usuario quiero ver mis pedidos"))
	assert.True(t, ValidStoryFormat("como administrador necesito exportar datos"))
	assert.True(t, ValidStoryFormat("Como cliente deseo recibir notificaciones"))
	assert.False(t, ValidStoryFormat("El sistema envía correos"))
	assert.False(t, ValidStoryFormat("Como usuario"))
	assert.False(t, ValidStoryFormat(""))
}

func TestExtractUserRole(t *testing.T) {
	assert.Equal(t, "administrador", ExtractUserRole("Como administrador quiero exportar datos"))
	assert.Equal(t, "cliente frecuente", ExtractUserRole("Como cliente frecuente quiero ver mis descuentos"))
	assert.Equal(t, "usuario", ExtractUserRole("El sistema envía correos"))
	assert.Equal(t, "usuario", ExtractUserRole(""))
}
