package game

import "errors"

// Game errors
var (
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidAction         = errors.New("invalid action for current phase")
	ErrInvalidTarget         = errors.New("invalid target")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrOutOfBounds           = errors.New("coordinate out of bounds")
	ErrIllegalPlacement      = errors.New("illegal placement")
	ErrGameNotStarted        = errors.New("game has not started")
	ErrGameOver              = errors.New("game is over")
	ErrDeckEmpty             = errors.New("development deck is empty")
	ErrNoSuchCard            = errors.New("player does not hold that card")
	ErrDiscardPending        = errors.New("players must discard first")
	ErrDiscardTooMany        = errors.New("discard exceeds the required amount")
	ErrNoTradeOffer          = errors.New("no pending trade offer")
	ErrTooFewPlayers         = errors.New("not enough players")
	ErrTooManyPlayers        = errors.New("too many players")
)

// Placement errors. Each one wraps ErrIllegalPlacement.
var (
	ErrOccupied     = placementError("intersection already owned")
	ErrTooClose     = placementError("adjacent intersection is settled")
	ErrNotOwner     = placementError("intersection is not your settlement")
	ErrAlreadyCity  = placementError("settlement is already a city")
	ErrSameEndpoint = placementError("road endpoints are identical")
	ErrNoConnection = placementError("no connection between intersections")
	ErrRoadExists   = placementError("connection already has a road")
	ErrNotConnected = placementError("road does not touch your network")
)

type placementErr struct{ msg string }

func placementError(msg string) error { return &placementErr{msg: msg} }

func (e *placementErr) Error() string { return ErrIllegalPlacement.Error() + ": " + e.msg }

func (e *placementErr) Unwrap() error { return ErrIllegalPlacement }
