package westworld

import (
	"github.com/roach88/simkit/internal/fsm"
	"github.com/roach88/simkit/internal/telegram"
)

// EnterMineAndDigForNugget: dig until the pockets are full or Bob is
// thirsty.
type EnterMineAndDigForNugget struct{ fsm.Base[*Miner] }

func (EnterMineAndDigForNugget) Enter(m *Miner) error {
	if m.Location == GoldMine {
		return nil
	}
	m.say("Walkin' to the gold mine!")
	m.Location = GoldMine
	return nil
}

func (EnterMineAndDigForNugget) Execute(m *Miner) error {
	m.AddToGoldCarried(1)
	m.IncreaseFatigue()
	m.say("Pickin' up a nugget!")

	if m.PocketsFull() {
		if err := m.machine.ChangeState(VisitBankAndDepositGold{}); err != nil {
			return err
		}
	}
	// Both checks run: a thirsty Bob with full pockets passes through the
	// bank on his way to the saloon.
	if m.Thirsty() {
		return m.machine.ChangeState(QuenchThirst{})
	}
	return nil
}

func (EnterMineAndDigForNugget) Exit(m *Miner) error {
	m.say("Ah'm leavin' the gold mine with mah pockets full o' sweet gold!")
	return nil
}

// VisitBankAndDepositGold: deposit everything, then go home if rich
// enough or back to the mine otherwise.
type VisitBankAndDepositGold struct{ fsm.Base[*Miner] }

func (VisitBankAndDepositGold) Enter(m *Miner) error {
	if m.Location == Bank {
		return nil
	}
	m.say("Goin' to the bank. Yes siree!")
	m.Location = Bank
	return nil
}

func (VisitBankAndDepositGold) Execute(m *Miner) error {
	m.AddToWealth(m.GoldCarried)
	m.GoldCarried = 0
	m.say("Depositing gold. Total savings now: %d", m.Wealth)

	if m.Wealth >= ComfortLevel {
		m.say("WooHoo! Rich enough for now. Back home to mah li'lle lady")
		return m.machine.ChangeState(GoHomeAndSleepTillRested{})
	}
	return m.machine.ChangeState(EnterMineAndDigForNugget{})
}

func (VisitBankAndDepositGold) Exit(m *Miner) error {
	m.say("Leavin' the bank")
	return nil
}

// GoHomeAndSleepTillRested: tell Elsa he's home, then sleep off the
// fatigue. A StewReady message sends him to the table.
type GoHomeAndSleepTillRested struct{ fsm.Base[*Miner] }

func (GoHomeAndSleepTillRested) Enter(m *Miner) error {
	if m.Location == Shack {
		return nil
	}
	m.say("Walkin' home")
	m.Location = Shack
	return m.sim.Send(telegram.SendImmediately, m.ID(), Elsa, MsgHiHoneyImHome, nil)
}

func (GoHomeAndSleepTillRested) Execute(m *Miner) error {
	if !m.Fatigued() {
		m.say("What a God darn fantastic nap! Time to find more gold")
		return m.machine.ChangeState(EnterMineAndDigForNugget{})
	}
	m.DecreaseFatigue()
	m.say("ZZZZ... ")
	return nil
}

func (GoHomeAndSleepTillRested) Exit(m *Miner) error {
	m.say("Leaving the house")
	return nil
}

func (GoHomeAndSleepTillRested) OnMessage(m *Miner, t telegram.Telegram) (bool, error) {
	if t.Msg != MsgStewReady {
		return false, nil
	}
	m.say("Message handled at time %g", m.sim.Now())
	m.say("Okay hun, ahm a-comin'!")
	return true, m.machine.ChangeState(EatStew{})
}

// QuenchThirst: one whiskey at the saloon, then back to the mine.
type QuenchThirst struct{ fsm.Base[*Miner] }

func (QuenchThirst) Enter(m *Miner) error {
	if m.Location == Saloon {
		return nil
	}
	m.Location = Saloon
	m.say("Boy, ah sure is thusty! Walkin' to the saloon")
	return nil
}

func (QuenchThirst) Execute(m *Miner) error {
	if !m.Thirsty() {
		m.sim.Logger().Warn("miner at the saloon without a thirst", "thirst", m.thirst)
		return nil
	}
	m.BuyAndDrinkWhiskey()
	m.say("That's mighty fine sippin' liquer")
	return m.machine.ChangeState(EnterMineAndDigForNugget{})
}

func (QuenchThirst) Exit(m *Miner) error {
	m.say("Leavin' the saloon, feelin' good")
	return nil
}

// EatStew: one tick at the table, then back to whatever Bob was doing.
type EatStew struct{ fsm.Base[*Miner] }

func (EatStew) Enter(m *Miner) error {
	m.say("Smells reaaal goood Elsa!")
	return nil
}

func (EatStew) Execute(m *Miner) error {
	m.say("Tastes real good too!")
	return m.machine.RevertToPreviousState()
}

func (EatStew) Exit(m *Miner) error {
	m.say("Thankya li'lle lady. Ah better get back to whatever ah wuz doin'")
	return nil
}
