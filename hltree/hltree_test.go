package hltree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logward/x12transform/document"
	"github.com/logward/x12transform/errs"
)

const testISA = "ISA*00*          *00*          *ZZ*SUBMITTER ID   *ZZ*RECEIVER ID    *210101*1200*^*00501*000000001*0*P*:~"

func tokenize(t *testing.T, body string) *document.Document {
	t.Helper()
	doc, err := document.Tokenize([]byte(testISA + body))
	require.NoError(t, err)
	return doc
}

// a two-level hierarchy: one billing provider (HL 1), two subscribers
// (HL 2 and HL 3) under it, each followed by one NM1 segment to give the
// node a non-empty document range.
const twoLevelHierarchy = "GS*HC*S*R*20210101*1200*1*X*005010X222A1~" +
	"ST*837*0001~" +
	"HL*1**20*1~" +
	"NM1*85*2*BILLING PROVIDER*****XX*1~" +
	"HL*2*1*22*0~" +
	"NM1*IL*1*DOE*JOHN****MI*123~" +
	"HL*3*1*22*0~" +
	"NM1*IL*1*SMITH*JANE****MI*456~" +
	"SE*9*0001~" +
	"GE*1*1~" +
	"IEA*1*000000001~"

func TestBuild_TwoLevelHierarchy(t *testing.T) {
	doc := tokenize(t, twoLevelHierarchy)
	tree, err := Build(doc)
	require.NoError(t, err)
	require.Len(t, tree.Roots, 1)

	root := tree.Roots[0]
	assert.Equal(t, "1", root.ID)
	assert.Equal(t, "", root.ParentID)
	assert.Equal(t, "20", root.LevelCode)
	assert.True(t, root.HasChildren, "HL*1 declares HL04=1")
	require.Len(t, root.Children, 2)

	assert.Equal(t, "2", root.Children[0].ID)
	assert.Equal(t, "3", root.Children[1].ID)
	assert.False(t, root.Children[0].HasChildren, "HL*2 declares HL04=0")
	assert.False(t, root.Children[1].HasChildren, "HL*3 declares HL04=0")
	assert.Equal(t, 3, tree.CountNodes())
}

func TestBuild_SegmentRangesAreHalfOpenAndContiguous(t *testing.T) {
	doc := tokenize(t, twoLevelHierarchy)
	tree, err := Build(doc)
	require.NoError(t, err)

	root := tree.Roots[0]
	// Root's range covers its own HL segment plus its NM1, up to (not
	// including) the next HL.
	rootSegs, err := root.Segments(doc)
	require.NoError(t, err)
	ids := idsOf(rootSegs)
	assert.Equal(t, []string{"HL", "NM1"}, ids)

	// Last child's range runs to the end of the document (SE/GE/IEA are
	// part of it since nothing else bounds it further).
	last := root.Children[len(root.Children)-1]
	assert.Equal(t, doc.SegmentCount(), last.SegmentEnd)
}

func idsOf(segs []document.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.IDString()
	}
	return out
}

func TestBuild_NoHLSegmentsIsError(t *testing.T) {
	doc := tokenize(t, "GS*HC*S*R*20210101*1200*1*X*005010X222A1~ST*837*0001~SE*2*0001~GE*1*1~IEA*1*000000001~")
	_, err := Build(doc)
	require.Error(t, err)
	assert.Equal(t, errs.ParseError, errs.CodeOf(err))
}

func TestBuild_UnknownParentIsError(t *testing.T) {
	doc := tokenize(t, "GS*HC*S*R*20210101*1200*1*X*005010X222A1~ST*837*0001~HL*2*1*22*0~SE*2*0001~GE*1*1~IEA*1*000000001~")
	_, err := Build(doc)
	require.Error(t, err)
	assert.Equal(t, errs.ParseError, errs.CodeOf(err))
}

func TestTree_Walk_VisitsPreOrder(t *testing.T) {
	doc := tokenize(t, twoLevelHierarchy)
	tree, err := Build(doc)
	require.NoError(t, err)

	var visited []string
	tree.Walk(func(n *Node) { visited = append(visited, n.ID) })
	assert.Equal(t, []string{"1", "2", "3"}, visited)
}

func TestTree_NodesByLevelCode(t *testing.T) {
	doc := tokenize(t, twoLevelHierarchy)
	tree, err := Build(doc)
	require.NoError(t, err)

	subscribers := tree.NodesByLevelCode("22")
	require.Len(t, subscribers, 2)
	assert.Equal(t, "2", subscribers[0].ID)
	assert.Equal(t, "3", subscribers[1].ID)
}

func TestTree_DescendantsCount(t *testing.T) {
	doc := tokenize(t, twoLevelHierarchy)
	tree, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.DescendantsCount(tree.Roots[0]))
	assert.Equal(t, 0, tree.DescendantsCount(tree.Roots[0].Children[0]))
}

func TestBuild_DeepChain(t *testing.T) {
	var b strings.Builder
	b.WriteString("GS*HC*S*R*20210101*1200*1*X*005010X222A1~ST*837*0001~")
	b.WriteString("HL*1**20*1~NM1*85*2*A*****XX*1~")
	b.WriteString("HL*2*1*22*1~NM1*IL*1*B****MI*1~")
	b.WriteString("HL*3*2*23*0~NM1*QC*1*C****MI*1~")
	b.WriteString("SE*7*0001~GE*1*1~IEA*1*000000001~")
	doc := tokenize(t, b.String())
	tree, err := Build(doc)
	require.NoError(t, err)
	require.Len(t, tree.Roots, 1)
	require.Len(t, tree.Roots[0].Children, 1)
	require.Len(t, tree.Roots[0].Children[0].Children, 1)
	assert.Equal(t, "3", tree.Roots[0].Children[0].Children[0].ID)
}
