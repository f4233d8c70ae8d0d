package patcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/dsp"
)

func ids(objects []*Object) []uint64 {
	var s []uint64
	for _, o := range objects {
		s = append(s, o.ID())
	}
	return s
}

func nodeIDs(nodes []dsp.Node) []uint64 {
	var s []uint64
	for _, n := range nodes {
		s = append(s, n.(*Object).ID())
	}
	return s
}

func TestIDReuse(t *testing.T) {
	p, _ := newTestPatcher(t)
	var objects []*Object
	for range 5 {
		objects = append(objects, create(t, p, "box"))
	}
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(objects))

	require.True(t, p.Remove(objects[3]))
	require.True(t, p.Remove(objects[1]))
	assert.False(t, p.Remove(objects[1]))

	assert.Equal(t, uint64(2), create(t, p, "box").ID())
	assert.Equal(t, uint64(4), create(t, p, "box").ID())
	assert.Equal(t, uint64(6), create(t, p, "box").ID())
	assert.Equal(t, 6, p.Len())
}

func TestCreateObjectIgnoresGivenID(t *testing.T) {
	p, _ := newTestPatcher(t)
	o, err := p.CreateObject(ObjectDict(99, "box"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), o.ID())
	assert.Same(t, o, p.Object(1))
	assert.Nil(t, p.Object(99))
}

func TestCreateObjectErrors(t *testing.T) {
	p, c := newTestPatcher(t)

	_, err := p.CreateObject(atom.Dict{atom.Name: atom.NewTag("box")})
	assert.True(t, errors.Is(err, ErrInvalidObject))

	_, err = p.CreateObject(ObjectDict(0, "nonesuch 1 2"))
	assert.True(t, errors.Is(err, ErrUnknownObject))

	_, err = p.CreateObject(ObjectDict(0, "broken"))
	assert.ErrorContains(t, err, "no can do")

	assert.Len(t, errorTexts(c), 3)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, uint64(1), create(t, p, "box").ID())
}

func TestLinkSymmetry(t *testing.T) {
	p, _ := newTestPatcher(t)
	a := create(t, p, "box m mm")
	b := create(t, p, "box mm m")
	l := link(t, p, a, 1, b, 0)
	require.NotNil(t, l)

	assert.True(t, a.Outlet(1).Has(b, 0))
	assert.True(t, b.Inlet(0).Has(a, 1))
	assert.Equal(t, 0, a.Outlet(0).Len())
	assert.Equal(t, Message, l.Type())
	assert.False(t, l.IsSignal())

	b.Inlet(0).Erase(a, 1)
	require.True(t, p.RemoveLink(l))
	assert.Equal(t, 0, a.Outlet(1).Len())
	assert.Equal(t, 0, b.Inlet(0).Len())
	assert.False(t, p.RemoveLink(l))
	assert.Empty(t, p.Links())
}

func TestDuplicateLink(t *testing.T) {
	p, _ := newTestPatcher(t)
	a := create(t, p, "box m m")
	b := create(t, p, "box m m")
	require.NotNil(t, link(t, p, a, 0, b, 0))
	assert.Nil(t, link(t, p, a, 0, b, 0))
	assert.Len(t, p.Links(), 1)
	assert.Equal(t, 1, a.Outlet(0).Len())
	assert.Equal(t, 1, b.Inlet(0).Len())
}

func TestLinkTypeResolution(t *testing.T) {
	for _, test := range []struct {
		outlet, inlet string
		want          IoType
		signal        bool
		none          bool
	}{
		{outlet: "s", inlet: "s", want: Signal, signal: true},
		{outlet: "b", inlet: "b", want: Both, signal: true},
		{outlet: "b", inlet: "s", want: Signal, signal: true},
		{outlet: "s", inlet: "b", want: Signal, signal: true},
		{outlet: "m", inlet: "m", want: Message},
		{outlet: "b", inlet: "m", want: Message},
		{outlet: "m", inlet: "b", want: Message},
		{outlet: "m", inlet: "s", none: true},
		{outlet: "s", inlet: "m", none: true},
	} {
		t.Run(test.outlet+"->"+test.inlet, func(t *testing.T) {
			p, c := newTestPatcher(t)
			from := create(t, p, "box m "+test.outlet)
			to := create(t, p, "box "+test.inlet+" m")
			l := link(t, p, from, 0, to, 0)
			assert.Empty(t, errorTexts(c))
			if test.none {
				assert.Nil(t, l)
				assert.Equal(t, 0, from.Outlet(0).Len())
				assert.Empty(t, p.Links())
				return
			}
			require.NotNil(t, l)
			assert.Equal(t, test.want, l.Type())
			assert.Equal(t, test.signal, l.IsSignal())
			_, ok := l.Edge()
			assert.Equal(t, test.signal, ok)
		})
	}
}

func TestSignalLinkUsesCompactedIndices(t *testing.T) {
	p, _ := newTestPatcher(t)
	a := create(t, p, "box m msms")
	b := create(t, p, "box msms m")
	l := link(t, p, a, 3, b, 3)
	e, ok := l.Edge()
	require.True(t, ok)
	assert.Equal(t, 1, e.Outlet)
	assert.Equal(t, 1, e.Inlet)
	assert.Same(t, a, e.From)
	assert.Same(t, b, e.To)
}

func TestCreateLinkErrors(t *testing.T) {
	p, c := newTestPatcher(t)
	a := create(t, p, "box m m")
	for _, d := range []atom.Dict{
		{},
		{atom.From: atom.Vector{int64(1), int64(0)}},
		LinkDict(1, 0, 9, 0),
		LinkDict(1, 1, 1, 0),
		LinkDict(1, 0, 1, -1),
		{atom.From: atom.Vector{atom.NewTag("x"), int64(0)}, atom.To: atom.Vector{int64(1), int64(0)}},
		{atom.From: atom.Vector{1.5, int64(0)}, atom.To: atom.Vector{int64(1), int64(0)}},
		{atom.From: atom.Vector{int64(1), int64(0)}, atom.To: atom.Vector{int64(1), 1e30}},
	} {
		l, err := p.CreateLink(d)
		assert.Nil(t, l)
		var connErr *ConnectionError
		assert.True(t, errors.As(err, &connErr), "%v", d)
	}
	assert.Len(t, errorTexts(c), 8)
	assert.Equal(t, 0, a.Outlet(0).Len())
}

func TestRemoveObjectRemovesItsLinks(t *testing.T) {
	p, _ := newTestPatcher(t)
	var freed int
	require.NoError(t, p.Factory().Register("freeing", func(o *Object) (Behavior, error) {
		o.AddInlet(Message, Hot, "")
		o.AddOutlet(Message, "")
		return &freeCounter{box: box{o: o}, freed: &freed}, nil
	}))
	a := create(t, p, "box m m")
	b := create(t, p, "freeing")
	c := create(t, p, "box m m")
	link(t, p, a, 0, b, 0)
	link(t, p, b, 0, c, 0)
	keep := link(t, p, a, 0, c, 0)

	assert.Len(t, p.LinksOf(b), 2)
	require.True(t, p.Remove(b))
	assert.Equal(t, 1, freed)
	assert.Equal(t, []*Link{keep}, p.Links())
	assert.Equal(t, 1, a.Outlet(0).Len())
	assert.Equal(t, 1, c.Inlet(0).Len())
	assert.True(t, c.Inlet(0).Has(a, 0))
	assert.Equal(t, []*Object{a, c}, p.Objects())
}

func TestAddRemapsBatchIDs(t *testing.T) {
	p, _ := newTestPatcher(t)
	existing := create(t, p, "box m m")

	batch := atom.Dict{
		atom.Objects: atom.Vector{
			ObjectDict(5, "box m m"),
			ObjectDict(1, "box m m"),
		},
		atom.Links: atom.Vector{
			LinkDict(5, 0, 1, 0),
			LinkDict(1, 0, 5, 0),
		},
	}
	require.NoError(t, p.Add(batch))

	objects := p.Objects()
	require.Len(t, objects, 3)
	five, one := objects[1], objects[2]
	assert.Equal(t, uint64(2), five.ID())
	assert.Equal(t, uint64(3), one.ID())

	links := p.Links()
	require.Len(t, links, 2)
	assert.Same(t, five, links[0].From())
	assert.Same(t, one, links[0].To())
	assert.Same(t, one, links[1].From())
	assert.Same(t, five, links[1].To())
	assert.Equal(t, 0, existing.Outlet(0).Len())

	// The batch itself is left alone.
	assert.Equal(t, atom.Vector{int64(5), int64(0)}, batch[atom.Links].(atom.Vector)[0].(atom.Dict)[atom.From])
}

func TestAddKeepsReferencesOutsideTheBatch(t *testing.T) {
	p, _ := newTestPatcher(t)
	existing := create(t, p, "box m m")
	require.NoError(t, p.Add(atom.Dict{
		atom.Objects: atom.Vector{ObjectDict(7, "box m m")},
		atom.Links:   atom.Vector{LinkDict(existing.ID(), 0, 7, 0)},
	}))
	require.Len(t, p.Links(), 1)
	assert.Same(t, existing, p.Links()[0].From())
	assert.Equal(t, uint64(2), p.Links()[0].To().ID())
}

func TestAddContinuesPastFailures(t *testing.T) {
	p, c := newTestPatcher(t)
	err := p.Add(atom.Dict{
		atom.Objects: atom.Vector{
			ObjectDict(10, "box m m"),
			ObjectDict(20, "nonesuch"),
			ObjectDict(30, "box m m"),
			atom.Dict{},
		},
		atom.Links: atom.Vector{
			LinkDict(10, 0, 20, 0),
			LinkDict(10, 0, 30, 0),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownObject))
	assert.Len(t, errorTexts(c), 2)
	assert.Equal(t, 2, p.Len())
	require.Len(t, p.Links(), 1)
	assert.Equal(t, uint64(2), p.Links()[0].To().ID())
}

func TestAddFailedObjectDoesNotResolveToLiveObject(t *testing.T) {
	p, c := newTestPatcher(t)
	live := create(t, p, "box m m")
	err := p.Add(atom.Dict{
		atom.Objects: atom.Vector{
			ObjectDict(1, "nonesuch"),
			ObjectDict(2, "box m m"),
		},
		atom.Links: atom.Vector{
			LinkDict(1, 0, 2, 0),
			LinkDict(2, 0, 1, 0),
		},
	})
	require.Error(t, err)
	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.Len(t, errorTexts(c), 3)
	assert.Equal(t, 2, p.Len())
	assert.Empty(t, p.Links())
	assert.Equal(t, 0, live.Outlet(0).Len())
	assert.Equal(t, 0, live.Inlet(0).Len())
}

func TestPanickingConstructorReleasesLock(t *testing.T) {
	p, _ := newTestPatcher(t)
	require.NoError(t, p.Factory().Register("panic", func(*Object) (Behavior, error) {
		panic("boom")
	}))
	assert.Panics(t, func() { p.CreateObject(ObjectDict(0, "panic")) })
	create(t, p, "box m m")
	assert.Equal(t, 1, p.Len())
}

func TestChainOrdering(t *testing.T) {
	p, _ := newTestPatcher(t)
	o := map[string]*Object{}
	for _, name := range []string{"C", "E", "B", "D", "A"} {
		o[name] = create(t, p, "box s s")
	}
	link(t, p, o["A"], 0, o["B"], 0)
	link(t, p, o["B"], 0, o["C"], 0)
	link(t, p, o["D"], 0, o["E"], 0)

	prog := p.Program()
	require.NotNil(t, prog)
	order := map[uint64]int{}
	for i, id := range nodeIDs(prog.Nodes()) {
		order[id] = i
	}
	require.Len(t, order, 5)
	before := func(a, b string) bool { return order[o[a].ID()] < order[o[b].ID()] }
	assert.True(t, before("A", "B"))
	assert.True(t, before("B", "C"))
	assert.True(t, before("D", "E"))
	assert.Empty(t, prog.Excluded())
}

func TestCycleContainment(t *testing.T) {
	p, c := newTestPatcher(t)
	a := create(t, p, "box s s")
	b := create(t, p, "box s s")
	cc := create(t, p, "box s s")
	d := create(t, p, "box s s")
	link(t, p, cc, 0, d, 0)
	link(t, p, a, 0, b, 0)
	require.Empty(t, errorTexts(c))
	link(t, p, b, 0, a, 0)

	prog := p.Program()
	if diff := cmp.Diff([]uint64{cc.ID(), d.ID()}, nodeIDs(prog.Nodes())); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []uint64{a.ID(), b.ID()}, nodeIDs(prog.Excluded()))
	require.Len(t, errorTexts(c), 1)
	assert.Contains(t, errorTexts(c)[0], "signal cycle")

	p.RemoveLink(p.LinksOf(a)[1])
	assert.Len(t, p.Program().Nodes(), 4)
}

func TestSignalObjectsArePrepared(t *testing.T) {
	p, _ := newTestPatcher(t)
	o := create(t, p, "box s s")
	assert.Equal(t, 1, o.Behavior().(*signalBox).prepared)
	create(t, p, "box s s")
	assert.Equal(t, 1, o.Behavior().(*signalBox).prepared)
	m := create(t, p, "box m m")
	assert.False(t, m.IsSignal())
	assert.Len(t, p.Program().Nodes(), 2)
}

func TestListeners(t *testing.T) {
	p, _ := newTestPatcher(t)
	var events []string
	l := &Listener{
		ObjectCreated: func(_ *Patcher, o *Object) { events = append(events, fmt.Sprint("+", o.ID())) },
		ObjectRemoved: func(_ *Patcher, o *Object) { events = append(events, fmt.Sprint("-", o.ID())) },
		LinkCreated: func(_ *Patcher, l *Link) {
			events = append(events, fmt.Sprintf("+%d>%d", l.From().ID(), l.To().ID()))
		},
		LinkRemoved: func(_ *Patcher, l *Link) {
			events = append(events, fmt.Sprintf("-%d>%d", l.From().ID(), l.To().ID()))
		},
		ChainCompiled: func(_ *Patcher, prog *dsp.Program) {
			events = append(events, fmt.Sprint("chain ", prog.Len()))
		},
	}
	p.AddListener(l)

	require.NoError(t, p.Add(atom.Dict{
		atom.Objects: atom.Vector{ObjectDict(1, "box s s"), ObjectDict(2, "box m m")},
		atom.Links:   atom.Vector{LinkDict(1, 0, 1, 0)},
	}))
	a := p.Object(1)
	b := p.Object(2)
	p.Remove(a)
	p.Remove(b)
	assert.Equal(t, []string{
		"+1", "+2", "+1>1", "chain 0",
		"-1>1", "-1", "chain 0",
		"-2",
	}, events)

	p.RemoveListener(l)
	create(t, p, "box")
	assert.Len(t, events, 8)
}

func TestListenerMayModifyPatcher(t *testing.T) {
	p, _ := newTestPatcher(t)
	l := &Listener{ObjectCreated: func(p *Patcher, o *Object) {
		if o.ID() == 1 {
			create(t, p, "box")
		}
	}}
	p.AddListener(l)
	create(t, p, "box")
	assert.Equal(t, 2, p.Len())
}

func TestZOrder(t *testing.T) {
	p, _ := newTestPatcher(t)
	a := create(t, p, "box")
	b := create(t, p, "box")
	c := create(t, p, "box")
	p.ToFront(a)
	assert.Equal(t, []*Object{b, c, a}, p.Objects())
	p.ToBack(c)
	assert.Equal(t, []*Object{c, b, a}, p.Objects())
	p.ToFront(&Object{})
	assert.Len(t, p.Objects(), 3)
}

func TestWriteRoundTrip(t *testing.T) {
	p, _ := newTestPatcher(t)
	require.NoError(t, p.Add(atom.Dict{
		atom.Objects: atom.Vector{
			ObjectDict(1, "box s s"),
			ObjectDict(2, "box ms s"),
			ObjectDict(3, "counter"),
		},
		atom.Links: atom.Vector{LinkDict(1, 0, 2, 1)},
	}))
	written := p.Write()

	data, err := atom.Marshal(written)
	require.NoError(t, err)
	read, err := atom.Unmarshal(data)
	require.NoError(t, err)

	q, _ := newTestPatcher(t)
	require.NoError(t, q.Add(read))
	if diff := cmp.Diff(written, q.Write()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(0), written[atom.Objects].(atom.Vector)[2].(atom.Dict)[atom.NewTag("count")])
}

func TestClear(t *testing.T) {
	p, _ := newTestPatcher(t)
	a := create(t, p, "box s s")
	b := create(t, p, "box s s")
	link(t, p, a, 0, b, 0)
	p.Clear()
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, p.Links())
	assert.Equal(t, 0, a.Outlet(0).Len())
	assert.Equal(t, 0, p.Program().Len())
	assert.Equal(t, uint64(1), create(t, p, "box").ID())
}

func TestObjectDict(t *testing.T) {
	d := ObjectDict(3, "osc~ 440 sine")
	assert.Equal(t, atom.Dict{
		atom.Name:      atom.NewTag("osc~"),
		atom.Text:      atom.NewTag("osc~ 440 sine"),
		atom.ID:        int64(3),
		atom.Arguments: atom.Vector{int64(440), atom.NewTag("sine")},
	}, d)
}
