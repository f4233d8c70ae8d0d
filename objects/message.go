package objects

import (
	"github.com/gordonklaus/kiwi/atom"
	"github.com/gordonklaus/kiwi/patcher"
)

// printer posts what it receives to the console.
type printer struct {
	o      *patcher.Object
	prefix string
}

func newPrint(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Message, patcher.Hot, "anything to print")
	p := &printer{o: o}
	if args := o.Info().Args; len(args) > 0 {
		p.prefix = atom.Format(args) + ": "
	}
	return p, nil
}

func (p *printer) Receive(inlet int, msg atom.Vector) {
	p.o.Patcher().Console().PostFrom(p.o, p.prefix+atom.Format(msg))
}

// arith applies a binary operation to a hot left operand and a cold right
// one, given as argument or set through the right inlet.
type arith struct {
	o           *patcher.Object
	op          func(a, b float64) float64
	left, right float64
}

func newArith(op func(a, b float64) float64) patcher.Constructor {
	return func(o *patcher.Object) (patcher.Behavior, error) {
		o.AddInlet(patcher.Message, patcher.Hot, "left operand")
		o.AddInlet(patcher.Message, patcher.Cold, "right operand")
		o.AddOutlet(patcher.Message, "result")
		return &arith{o: o, op: op, right: arg(o, 0, 0)}, nil
	}
}

func (a *arith) Receive(inlet int, msg atom.Vector) {
	if inlet == 1 {
		if f, ok := number(msg); ok {
			a.right = f
		}
		return
	}
	if f, ok := number(msg); ok {
		a.left = f
	} else if !isBang(msg) {
		a.o.Patcher().Console().WarningFrom(a.o, "expected a number or bang")
		return
	}
	a.o.Send(0, atom.Vector{a.op(a.left, a.right)})
}

// floatBox stores a number and outputs it when set or banged.
type floatBox struct {
	o     *patcher.Object
	value float64
}

func newFloat(o *patcher.Object) (patcher.Behavior, error) {
	o.AddInlet(patcher.Message, patcher.Hot, "number to store and output, or bang")
	o.AddInlet(patcher.Message, patcher.Cold, "number to store")
	o.AddOutlet(patcher.Message, "stored number")
	return &floatBox{o: o, value: arg(o, 0, 0)}, nil
}

func (f *floatBox) Receive(inlet int, msg atom.Vector) {
	if x, ok := number(msg); ok {
		f.value = x
	} else if inlet == 0 && !isBang(msg) {
		f.o.Patcher().Console().WarningFrom(f.o, "expected a number or bang")
		return
	}
	if inlet == 0 {
		f.o.Send(0, atom.Vector{f.value})
	}
}

func (f *floatBox) Save(d atom.Dict) { d[atom.NewTag("value")] = f.value }

func (f *floatBox) Load(d atom.Dict) {
	if x, ok := atom.Float(d[atom.NewTag("value")]); ok {
		f.value = x
	}
}
