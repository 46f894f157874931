package scene

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/inkpath/inkpath/pkg/errors"
	"github.com/inkpath/inkpath/pkg/rm"
)

// rootNodeID is the implicit top of every scene tree; it has no declaring
// block of its own.
var rootNodeID = rm.CrdtID{Part1: 0, Part2: 1}

// maxSupportedVersion is the newest payload schema this package can decode
// per block type. A block whose MinVersion is newer is refused outright; the
// format gives no safe way to guess at fields we do not know.
func maxSupportedVersion(t rm.BlockType) uint8 {
	if t == rm.BlockSceneLineItem {
		return 2
	}
	return 1
}

// Build resolves a flat block list into a [Document].
//
// The build makes three passes: a version and bookkeeping pass over every
// block, a tree pass resolving group declarations and parent links, and an
// attachment pass dispatching drawables under their resolved parents.
// Structural failures (unsupported schema, cyclic tree) abort; per-object
// failures (corrupt stroke data, missing parents) degrade and are logged.
// Blocks of unknown type pass through untouched and stay available via
// [Document.Blocks].
//
// A nil logger discards diagnostics.
func Build(blocks []rm.Block, logger *log.Logger) (*Document, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &builder{
		logger:  logger,
		doc:     &Document{Blocks: blocks, Root: &Group{NodeID: rootNodeID}},
		groups:  map[rm.CrdtID]*Group{},
		parents: map[rm.CrdtID]rm.CrdtID{},
		dead:    map[rm.CrdtID]bool{},
	}
	b.groups[rootNodeID] = b.doc.Root

	for i, blk := range blocks {
		if blk.Type.Known() && blk.MinVersion > maxSupportedVersion(blk.Type) {
			return nil, errors.New(errors.ErrCodeUnsupportedVersion,
				"block %d (%s) requires schema version %d, newest supported is %d",
				i, blk.Type, blk.MinVersion, maxSupportedVersion(blk.Type))
		}
		if err := b.bookkeeping(i, blk); err != nil {
			return nil, err
		}
	}
	for i, blk := range blocks {
		if err := b.treePass(i, blk); err != nil {
			return nil, err
		}
	}
	if err := b.checkAcyclic(); err != nil {
		return nil, err
	}
	for i, blk := range blocks {
		b.attachPass(i, blk)
	}
	b.placeGroups()
	b.rescueUnreachable()
	if err := b.checkTree(); err != nil {
		return nil, err
	}
	return b.doc, nil
}

type builder struct {
	logger *log.Logger
	doc    *Document

	groups  map[rm.CrdtID]*Group
	parents map[rm.CrdtID]rm.CrdtID // child group -> declared parent
	dead    map[rm.CrdtID]bool      // tombstoned item ids

	// claims records which parent currently holds each attached child, so a
	// later claim for the same id can displace the earlier one.
	claims map[rm.CrdtID]*Group
}

func (b *builder) corrupt(i int, blk rm.Block, err error) error {
	return errors.Wrap(errors.ErrCodeCorruptBlock, err, "block %d (%s) at offset %d",
		i, blk.Type, blk.Offset)
}

// bookkeeping handles the document-level blocks and tombstones.
func (b *builder) bookkeeping(i int, blk rm.Block) error {
	switch blk.Type {
	case rm.BlockMigrationInfo:
		m, err := parseMigrationInfo(blk)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		b.doc.Migration = m
	case rm.BlockPageInfo:
		p, err := parsePageInfo(blk)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		b.doc.Page = p
	case rm.BlockSceneInfo:
		s, err := parseSceneInfo(blk)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		b.doc.Info = s
	case rm.BlockAuthorIDs:
		authors, err := parseAuthorIDs(blk)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		b.doc.Authors = authors
	case rm.BlockSceneTombstone:
		r := rm.NewTaggedReader(blk.Payload)
		id, err := r.ReadID(1)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		b.dead[id] = true
	}
	return nil
}

// treePass resolves group declarations. Later blocks override earlier ones
// for the same node, matching the append-log's last-write-wins rule.
func (b *builder) treePass(i int, blk rm.Block) error {
	switch blk.Type {
	case rm.BlockSceneTree:
		d, err := parseSceneTree(blk)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		if _, ok := b.groups[d.TreeID]; !ok {
			b.groups[d.TreeID] = &Group{NodeID: d.TreeID}
		}
		b.parents[d.TreeID] = d.ParentID
	case rm.BlockTreeNode:
		g, err := parseTreeNode(blk)
		if err != nil {
			return b.corrupt(i, blk, err)
		}
		if existing, ok := b.groups[g.NodeID]; ok {
			// keep the child list, refresh the attributes
			existing.Label = g.Label
			existing.Visible = g.Visible
			existing.AnchorID = g.AnchorID
			existing.AnchorType = g.AnchorType
			existing.AnchorOriginX = g.AnchorOriginX
		} else {
			b.groups[g.NodeID] = g
		}
	}
	return nil
}

// checkAcyclic rejects parent links that loop. Every declared chain must
// terminate at the root or at a node with no declared parent.
func (b *builder) checkAcyclic() error {
	for start := range b.parents {
		seen := map[rm.CrdtID]bool{start: true}
		for id := b.parents[start]; !id.Zero(); {
			if seen[id] {
				return errors.New(errors.ErrCodeInvalidTree,
					"node %s is its own ancestor", id)
			}
			seen[id] = true
			next, ok := b.parents[id]
			if !ok {
				break
			}
			id = next
		}
	}
	return nil
}

// checkTree verifies the assembled child lists form a tree: no group may be
// reachable twice, which would make rendering walk forever.
func (b *builder) checkTree() error {
	visited := map[*Group]bool{}
	var stack []*Group
	if b.doc.Root != nil {
		stack = append(stack, b.doc.Root)
	}
	if b.doc.Orphans != nil {
		stack = append(stack, b.doc.Orphans)
	}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[g] {
			return errors.New(errors.ErrCodeInvalidTree,
				"group %s reachable through two paths", g.NodeID)
		}
		visited[g] = true
		for _, child := range g.Children {
			if sub, ok := child.(*Group); ok {
				stack = append(stack, sub)
			}
		}
	}
	return nil
}

// attach adds an item under its parent group, displacing any earlier claim
// for the same id. An unresolvable parent routes the item to the orphans
// group instead of dropping it.
func (b *builder) attach(parentID rm.CrdtID, item Item) {
	if b.claims == nil {
		b.claims = map[rm.CrdtID]*Group{}
	}
	if prev, ok := b.claims[item.ID()]; ok {
		prev.Children = remove(prev.Children, item.ID())
	}
	parent, ok := b.groups[parentID]
	if !ok {
		b.logger.Warn("orphaned item", "item", item.ID(), "missing_parent", parentID)
		parent = b.orphans()
	}
	parent.Children = append(parent.Children, item)
	b.claims[item.ID()] = parent
}

func remove(items []Item, id rm.CrdtID) []Item {
	for i, it := range items {
		if it.ID() == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func (b *builder) orphans() *Group {
	if b.doc.Orphans == nil {
		b.doc.Orphans = &Group{
			NodeID: rm.CrdtID{Part1: 0, Part2: 0},
			Label:  rm.LWW[string]{Value: "orphans"},
		}
	}
	return b.doc.Orphans
}

// attachPass dispatches the drawable item blocks. Parse failures here are
// per-object: the item is logged and skipped, the document survives.
func (b *builder) attachPass(i int, blk rm.Block) {
	switch blk.Type {
	case rm.BlockSceneGroupItem:
		h, childID, err := parseGroupItem(blk)
		if err != nil {
			b.logger.Warn("skipping corrupt group item", "block", i, "err", err)
			return
		}
		if childID.Zero() || b.dead[h.ItemID] {
			return
		}
		child, ok := b.groups[childID]
		if !ok {
			child = &Group{NodeID: childID}
			b.groups[childID] = child
		}
		b.attach(h.ParentID, child)
	case rm.BlockSceneLineItem:
		h, s, trailing, err := parseLineItem(blk)
		if err != nil {
			b.logger.Warn("skipping corrupt line item", "block", i, "err", err)
			return
		}
		if trailing > 0 {
			b.logger.Warn("stroke payload corrupt, keeping complete points",
				"block", i, "item", h.ItemID, "code", errors.ErrCodeCorruptStroke,
				"points", len(s.Points), "trailing_bytes", trailing)
		}
		if s == nil || b.dead[h.ItemID] {
			return
		}
		b.attach(h.ParentID, s)
	case rm.BlockSceneGlyphItem:
		h, g, err := parseGlyphItem(blk)
		if err != nil {
			b.logger.Warn("skipping corrupt glyph item", "block", i, "err", err)
			return
		}
		if g == nil || b.dead[h.ItemID] {
			return
		}
		b.attach(h.ParentID, g)
	case rm.BlockSceneTextItem:
		if _, err := parseTextItem(blk); err != nil {
			b.logger.Warn("skipping corrupt text item", "block", i, "err", err)
		}
	case rm.BlockRootText:
		t, err := parseRootText(blk)
		if err != nil {
			b.logger.Warn("skipping corrupt root text", "block", i, "err", err)
			return
		}
		b.doc.RootText = t
	}
}

// rescueUnreachable moves groups the root and orphan walks cannot reach into
// the orphans group. Group items that claim each other in a cycle detached
// from the root would otherwise vanish along with every drawable under them.
// Moving one group at a time breaks such cycles: the rest of the cycle becomes
// reachable through the moved group.
func (b *builder) rescueUnreachable() {
	for {
		reachable := map[*Group]bool{}
		var stack []*Group
		if b.doc.Root != nil {
			stack = append(stack, b.doc.Root)
		}
		if b.doc.Orphans != nil {
			stack = append(stack, b.doc.Orphans)
		}
		for len(stack) > 0 {
			g := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reachable[g] {
				continue
			}
			reachable[g] = true
			for _, child := range g.Children {
				if sub, ok := child.(*Group); ok {
					stack = append(stack, sub)
				}
			}
		}
		var pick *Group
		for _, g := range b.groups {
			if reachable[g] {
				continue
			}
			if pick == nil || g.NodeID.Compare(pick.NodeID) < 0 {
				pick = g
			}
		}
		if pick == nil {
			return
		}
		b.logger.Warn("unreachable group, moving to orphans", "group", pick.NodeID)
		if b.claims != nil {
			if prev, ok := b.claims[pick.NodeID]; ok {
				prev.Children = remove(prev.Children, pick.NodeID)
			}
		}
		orph := b.orphans()
		orph.Children = append(orph.Children, pick)
		if b.claims == nil {
			b.claims = map[rm.CrdtID]*Group{}
		}
		b.claims[pick.NodeID] = orph
	}
}

// placeGroups attaches groups that were declared with a parent but never
// claimed by a group item, so declared-only layers still render.
func (b *builder) placeGroups() {
	ordered := make([]rm.CrdtID, 0, len(b.parents))
	for id := range b.parents {
		ordered = append(ordered, id)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Compare(ordered[j-1]) < 0; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	for _, id := range ordered {
		if b.claims[id] != nil || id == rootNodeID {
			continue
		}
		b.attach(b.parents[id], b.groups[id])
	}
}
