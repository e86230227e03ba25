package westworld

import (
	"github.com/roach88/simkit/internal/fsm"
	"github.com/roach88/simkit/internal/telegram"
)

// WifesGlobalState runs every tick alongside Elsa's current state. It
// sends her to the bathroom now and then and answers Bob's greeting by
// starting the stew.
type WifesGlobalState struct{ fsm.Base[*Wife] }

func (WifesGlobalState) Execute(w *Wife) error {
	if w.rng.Float64() < BathroomChance && !w.machine.IsInState(VisitBathroom{}) {
		return w.machine.ChangeState(VisitBathroom{})
	}
	return nil
}

func (WifesGlobalState) OnMessage(w *Wife, t telegram.Telegram) (bool, error) {
	if t.Msg != MsgHiHoneyImHome {
		return false, nil
	}
	w.say("Message handled at time %g", w.sim.Now())
	w.say("Hi honey. Let me make you some of mah fine country stew")
	return true, w.machine.ChangeState(CookStew{})
}

// DoHouseWork: one random chore per tick.
type DoHouseWork struct{ fsm.Base[*Wife] }

var chores = []string{
	"Moppin' the floor",
	"Washin' the dishes",
	"Makin' the bed",
}

func (DoHouseWork) Enter(w *Wife) error {
	w.say("Time to do some more housework!")
	return nil
}

func (DoHouseWork) Execute(w *Wife) error {
	w.say("%s", chores[w.rng.IntN(len(chores))])
	return nil
}

// VisitBathroom lasts one tick and returns to the previous state.
type VisitBathroom struct{ fsm.Base[*Wife] }

func (VisitBathroom) Enter(w *Wife) error {
	w.say("Walkin' to the can. Need to powda mah pretty li'lle nose")
	return nil
}

func (VisitBathroom) Execute(w *Wife) error {
	w.say("Ahhhhhh! Sweet relief!")
	return w.machine.RevertToPreviousState()
}

func (VisitBathroom) Exit(w *Wife) error {
	w.say("Leavin' the Jon")
	return nil
}

// CookStew puts the stew in the oven and reminds Elsa with a delayed
// message to herself. When it arrives she calls Bob and goes back to
// housework.
type CookStew struct{ fsm.Base[*Wife] }

func (CookStew) Enter(w *Wife) error {
	if w.Cooking {
		return nil
	}
	w.say("Putting the stew in the oven")
	if err := w.sim.Send(w.stewDelay, w.ID(), w.ID(), MsgStewReady, nil); err != nil {
		return err
	}
	w.Cooking = true
	return nil
}

func (CookStew) Execute(w *Wife) error {
	w.say("Fussin' over food")
	return nil
}

func (CookStew) Exit(w *Wife) error {
	w.say("Puttin' the stew on the table")
	return nil
}

func (CookStew) OnMessage(w *Wife, t telegram.Telegram) (bool, error) {
	if t.Msg != MsgStewReady {
		return false, nil
	}
	w.say("Message received at time %g", w.sim.Now())
	w.say("StewReady! Lets eat")

	if err := w.sim.Send(telegram.SendImmediately, w.ID(), MinerBob, MsgStewReady, nil); err != nil {
		return true, err
	}
	w.Cooking = false
	return true, w.machine.ChangeState(DoHouseWork{})
}
