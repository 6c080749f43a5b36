package draft

// Format selects which selection protocol a draft runs under.
type Format string

const (
	FormatSwissA    Format = "SWISS_A"
	FormatSwissB    Format = "SWISS_B"
	FormatDuelBlind Format = "DUEL_BLIND"
	FormatDuelBan   Format = "DUEL_BAN"
)

// Simultaneous reports whether both sides act at once instead of in phases.
func (f Format) Simultaneous() bool {
	return f == FormatDuelBlind
}

// Exclusive reports whether a unit picked by one side is unavailable to the other.
func (f Format) Exclusive() bool {
	return f != FormatDuelBan
}

// Duel reports whether the format is seeded through the open-slot join flow
// and the coin flip, rather than the roster shuffle.
func (f Format) Duel() bool {
	return f == FormatDuelBlind || f == FormatDuelBan
}

type Status string

const (
	StatusWaiting     Status = "WAITING"
	StatusCoinFlip    Status = "COIN_FLIP"
	StatusAssignment  Status = "ASSIGNMENT"
	StatusPoolShuffle Status = "POOL_SHUFFLE"
	StatusActive      Status = "ACTIVE"
	StatusCompleted   Status = "COMPLETED"
)

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// TurnHolder is the party allowed to act on the current phase. Both only
// appears in simultaneous formats.
type TurnHolder string

const (
	TurnSideA TurnHolder = "A"
	TurnSideB TurnHolder = "B"
	TurnBoth  TurnHolder = "AB"
)

func (t TurnHolder) Holds(s Side) bool {
	return t == TurnBoth || string(t) == string(s)
}

type Role string

const (
	RoleSideA     Role = "SIDE_A"
	RoleSideB     Role = "SIDE_B"
	RoleSpectator Role = "SPECTATOR"
	RoleAdmin     Role = "ADMIN"
)

// Unit is one selectable roster entry. Element feeds the per-side distinct
// element rule on DuelBan bans.
type Unit struct {
	ID      string `firestore:"id" json:"id"`
	Name    string `firestore:"name" json:"name"`
	Element string `firestore:"element" json:"element"`
}

// Config is supplied by the organizer at creation time and treated as
// immutable once the draft is active.
type Config struct {
	TimerDurationMs  int64 `firestore:"timerDurationMs" json:"timerDurationMs"`
	ManualTimerStart bool  `firestore:"manualTimerStart" json:"manualTimerStart"`
	IsFriendly       bool  `firestore:"isFriendly" json:"isFriendly"`
	EntryFee         int64 `firestore:"entryFee" json:"entryFee"`
	PoolAmount       int64 `firestore:"poolAmount" json:"poolAmount"`
}

// BanState carries the DuelBan-only fields. BannedUnits is kept as the union
// of the two per-side ban lists.
type BanState struct {
	SideABans   []string `firestore:"sideABans" json:"sideABans"`
	SideBBans   []string `firestore:"sideBBans" json:"sideBBans"`
	BannedUnits []string `firestore:"bannedUnits" json:"bannedUnits"`
}

// BlindState carries the DuelBlind-only fields: the two disjoint dealt pools,
// the per-side locks, and the per-side shared-start deadlines.
type BlindState struct {
	PoolA          []string `firestore:"poolA" json:"poolA"`
	PoolB          []string `firestore:"poolB" json:"poolB"`
	LockedA        bool     `firestore:"lockedA" json:"lockedA"`
	LockedB        bool     `firestore:"lockedB" json:"lockedB"`
	DeadlineAMs    int64    `firestore:"deadlineAMs" json:"deadlineAMs"`
	DeadlineBMs    int64    `firestore:"deadlineBMs" json:"deadlineBMs"`
	ShuffleUntilMs int64    `firestore:"shuffleUntilMs" json:"shuffleUntilMs"`
}

// Draft is the shared document, one per event. Every mutation happens inside
// a single store transaction; clients only ever observe committed states.
type Draft struct {
	ID        string `firestore:"id" json:"id"`
	Format    Format `firestore:"format" json:"format"`
	Status    Status `firestore:"status" json:"status"`
	CreatedBy string `firestore:"createdBy" json:"createdBy"`

	Config Config `firestore:"config" json:"config"`
	Units  []Unit `firestore:"units" json:"units"`

	Participants []string        `firestore:"participants" json:"participants"`
	Roles        map[string]Role `firestore:"roles" json:"roles"`
	SideLeaders  map[Side]string `firestore:"sideLeaders" json:"sideLeaders"`

	CurrentPhase      int        `firestore:"currentPhase" json:"currentPhase"`
	CurrentTurn       TurnHolder `firestore:"currentTurn" json:"currentTurn"`
	SelectionsInPhase int        `firestore:"selectionsInPhase" json:"selectionsInPhase"`
	LockedPhases      []int      `firestore:"lockedPhases" json:"lockedPhases"`
	AwaitingLock      bool       `firestore:"awaitingLockConfirmation" json:"awaitingLockConfirmation"`

	SideASelections []string `firestore:"sideASelections" json:"sideASelections"`
	SideBSelections []string `firestore:"sideBSelections" json:"sideBSelections"`

	// Zero means "not armed": either the preparation window is still open or
	// manual timer start has not been triggered yet.
	TurnDeadlineMs int64 `firestore:"turnDeadlineMs" json:"turnDeadlineMs"`
	PrepUntilMs    int64 `firestore:"prepUntilMs" json:"prepUntilMs"`

	CoinFlip *CoinFlipState `firestore:"coinFlip,omitempty" json:"coinFlip,omitempty"`
	Ban      *BanState      `firestore:"ban,omitempty" json:"ban,omitempty"`
	Blind    *BlindState    `firestore:"blind,omitempty" json:"blind,omitempty"`

	BattleCodes []string `firestore:"battleCodes" json:"battleCodes"`
}

// Selections returns the given side's pick list.
func (d *Draft) Selections(s Side) []string {
	if s == SideA {
		return d.SideASelections
	}
	return d.SideBSelections
}

func (d *Draft) setSelections(s Side, units []string) {
	if s == SideA {
		d.SideASelections = units
	} else {
		d.SideBSelections = units
	}
}

// Leader reports whether uid is the leader of side s.
func (d *Draft) Leader(uid string, s Side) bool {
	return uid != "" && d.SideLeaders[s] == uid
}

// Admin reports whether uid holds the admin role on this draft.
func (d *Draft) Admin(uid string) bool {
	return d.Roles[uid] == RoleAdmin
}

// CanAct reports whether uid may perform selection operations for side s.
func (d *Draft) CanAct(uid string, s Side) bool {
	return d.Leader(uid, s) || d.Admin(uid)
}

// Locked reports whether phase idx has been locked.
func (d *Draft) Locked(idx int) bool {
	for _, p := range d.LockedPhases {
		if p == idx {
			return true
		}
	}
	return false
}

// UnitByID resolves a unit id against the draft's roster.
func (d *Draft) UnitByID(id string) (Unit, bool) {
	for _, u := range d.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
