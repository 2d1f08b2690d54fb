package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"
	// RpcFindMatch joins any match with an open seat, including one in progress.
	RpcFindMatch = "find_match"
	// RpcLocateRoom reports which node hosts a room.
	RpcLocateRoom = "locate_room"

	// MatchNameLandlord is the authoritative match handler name registered with Nakama.
	MatchNameLandlord = "landlord_match"

	// GameLabel identifies this module's matches in labels.
	GameLabel = "landlord"
)

// Keys of the JSON match label.
const (
	MatchLabelKey_Game      = "game"
	MatchLabelKey_OpenSeats = "open"
	MatchLabelKey_Phase     = "phase"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpBid       int64 = 2
	OpPlayCards int64 = 3
	OpPassTurn  int64 = 4

	// Server -> Client events
	OpMatchState     int64 = 100
	OpHandDealt      int64 = 101 // send privately
	OpBidPlaced      int64 = 102
	OpRedeal         int64 = 103
	OpLandlordChosen int64 = 104
	OpCardsPlayed    int64 = 105
	OpTurnPassed     int64 = 106
	OpRoundOver      int64 = 107
	OpGameError      int64 = 110
)

// Environment keys read from the Nakama runtime config.
const (
	envConfigPath       = "landlord_config_path"
	envBotsEnabled      = "landlord_bots_enabled"
	envBotMinDelay      = "landlord_bot_min_delay_sec"
	envBotMaxDelay      = "landlord_bot_max_delay_sec"
	envBotAutoFillDelay = "landlord_bot_auto_fill_delay_sec"
	envTurnSeconds      = "landlord_turn_seconds"
)
