package protocol

// HelpText is the fixed human-readable reply to HELP. It is informational
// only, not a versioned part of the wire contract.
const HelpText = `Pixelflut server.
Commands:
  HELP                       show this help text
  SIZE                       report canvas dimensions
  PX <x> <y>                 query a pixel
  PX <x> <y> <RRGGBB>        set an opaque pixel
  PX <x> <y> <RRGGBBAA>      set a pixel, alpha-blended over the destination
  PX <x> <y> <GG>            set a grey pixel
`
