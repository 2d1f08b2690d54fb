package app

// MinHumansToStart is the number of connected humans a hosted match needs
// before empty seats are filled with bots and the deal begins.
const MinHumansToStart = 1
