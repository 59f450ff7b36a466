package sqldump

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = "-- MySQL dump 10.13\n" +
	"DROP TABLE IF EXISTS `ticket`;\n" +
	"CREATE TABLE `ticket` (\n  `id` int(11) NOT NULL,\n  `date` datetime\n);\n" +
	"INSERT INTO `ticket` (`id`, `date`, `heure`, `numero`, `client_id`, `magasin_id`, `planning_id`) VALUES\n" +
	"(1, '2019-03-02 00:00:00', '10:15', 1, 12, 1, NULL),\n" +
	"(2, '2019-03-02 00:00:00', '10:40', 2, NULL, 1, NULL);\n" +
	"INSERT INTO `ticket_archive` VALUES\n" +
	"(99, '2010-01-01 00:00:00', '09:00', 1, NULL, 1, NULL);\n" +
	"INSERT INTO `ligne_ticket` VALUES\n" +
	"(5, 1, 3, 7, NULL, NULL, 25.00, 25.00, NULL, 0, NULL, 1, 0);\n" +
	"INSERT INTO `ticket` VALUES (3, '2019-03-03 00:00:00', 'midi; pile', 1, 4, 1, NULL),(4, '2019-03-03 00:00:00', '(12h)', 2, NULL, 1, NULL);\n"

func TestBlocks(t *testing.T) {
	t.Parallel()

	blocks := Blocks(sampleDump, "ticket")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "(2, '2019-03-02 00:00:00'")
	assert.Contains(t, blocks[1], "'midi; pile'", "semicolon inside a string must not end the block")

	assert.Len(t, Blocks(sampleDump, "ligne_ticket"), 1)
	assert.Len(t, Blocks(sampleDump, "ticket_archive"), 1)
	assert.Empty(t, Blocks(sampleDump, "paiement_ticket"))
}

func TestTuples_FileOrderAcrossBlocks(t *testing.T) {
	t.Parallel()

	got := slices.Collect(Tuples(sampleDump, "ticket"))
	require.Len(t, got, 4)
	assert.Equal(t, "1, '2019-03-02 00:00:00', '10:15', 1, 12, 1, NULL", got[0])
	assert.Equal(t, "2, '2019-03-02 00:00:00', '10:40', 2, NULL, 1, NULL", got[1])
	assert.Equal(t, "3, '2019-03-03 00:00:00', 'midi; pile', 1, 4, 1, NULL", got[2])
	assert.Equal(t, "4, '2019-03-03 00:00:00', '(12h)', 2, NULL, 1, NULL", got[3])
}

func TestTuples_MissingTableIsEmpty(t *testing.T) {
	t.Parallel()

	n := 0
	for range Tuples(sampleDump, "stock") {
		n++
	}
	assert.Zero(t, n)
}

func TestTuples_StopsWhenConsumerStops(t *testing.T) {
	t.Parallel()

	var got []string
	for inner := range Tuples(sampleDump, "ticket") {
		got = append(got, inner)
		if len(got) == 1 {
			break
		}
	}
	assert.Len(t, got, 1)
}

func TestBlockTuples_SkipsNonCandidateLines(t *testing.T) {
	t.Parallel()

	block := "INSERT INTO `stock` (`id`, `produits_id`)\n" +
		"VALUES\n" +
		"  (1, 10),\n" +
		"  -- comment, with comma\n" +
		"  (7)\n" +
		"  (2, 'x(y)'),\n" +
		"  (3, 'broken\n" +
		";"
	got := slices.Collect(BlockTuples([]string{block}))
	assert.Equal(t, []string{"1, 10", "2, 'x(y)'"}, got)
}

func TestGroups(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"1,'a'", "2,'b)'"}, groups("(1,'a'),(2,'b)');"))
	assert.Equal(t, []string{`1,'it\'s'`}, groups(`(1,'it\'s'),`))
	assert.Empty(t, groups("(1, 'open"))
}
