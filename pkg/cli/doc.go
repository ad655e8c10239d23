/*
Package cli provides command-line helpers used by the lantern command.

Output Formatting:

Command results can be printed as text, JSON or CSV:

	format, err := cli.ParseOutputFormat(outputFlag)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output requires the result to implement Rows.

Progress Reporting:

For batches of files, such as importing a directory into a bundle, progress
is tracked by file count and by bytes:

	progress := cli.NewProgressReporter(os.Stderr, "importing")
	progress.Start(files, totalBytes)
	progress.Add(fileBytes) // once per file
	progress.Finish()

Signal Handling:

	ctx := cli.SetupSignalHandler()  // canceled on SIGINT/SIGTERM
	cli.OnReload(ctx, func() { ... }) // called on SIGHUP
*/
package cli
