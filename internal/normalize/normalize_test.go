package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStableIDIsDeterministic(t *testing.T) {
	require.Equal(t, StableID("John Smith"), StableID("John Smith"))
}

func TestStableIDFoldsCaseAndWhitespace(t *testing.T) {
	want := StableID("John Smith")
	require.Equal(t, want, StableID("john smith"))
	require.Equal(t, want, StableID("  John   Smith "))
}

func TestStableIDKeepsSpellingVariantsDistinct(t *testing.T) {
	require.NotEqual(t, StableID("John Smith"), StableID("Jon Smith"), "no fuzzy matching")
}

func TestStableIDStripsDiacritics(t *testing.T) {
	require.Equal(t, "petr_novak", StableID("Petr Novák"))
	require.Equal(t, "antonin_dvorak", StableID("Antonín Dvořák"))
}

func TestStableIDDropsPunctuation(t *testing.T) {
	require.Equal(t, "fk_slavoj_b", StableID("FK Slavoj \"B\""))
}

func TestCleanName(t *testing.T) {
	require.Equal(t, "Petr Novák", CleanName(" Petr  Novák [K] "))
	require.Equal(t, "Jan Dvořák", CleanName("Jan Dvořák"))
}
