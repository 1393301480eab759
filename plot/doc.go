// Package plot records drawing intents made by script code and replays them
// later onto a drawing surface.
//
// Recording and drawing are separated in time. While a script runs, each call
// to one of the script-visible functions (plot.Title, plot.XLim, plot.YLim,
// plot.Plot) appends a [Command] to the kernel's [Buffer]. After the run, the
// rendering step takes everything out of the buffer with [Buffer.Drain] and
// hands it to [Replay].
//
// Commands form a replay log, not a scene graph: a title or range command only
// affects series drawn after it. Every series command produces its own chart,
// using the title and ranges in effect at that point.
package plot
