package terminal

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
)

func (i *Interpreter) registerBuiltins() {
	i.register(command{name: "help", usage: "help", summary: "Show this help message", run: i.help})
	i.register(command{name: "ls", usage: "ls [path]", summary: "List directory contents (-a for hidden)", run: i.ls})
	i.register(command{name: "cd", usage: "cd <path>", summary: "Change directory", run: i.cd})
	i.register(command{name: "cat", usage: "cat <file>", summary: "Display file contents", run: i.cat})
	i.register(command{name: "grep", usage: "grep <pattern> <file>", summary: "Search file for pattern", run: i.grep})
	i.register(command{name: "clear", usage: "clear", summary: "Clear terminal", run: clearScreen})
	i.register(command{name: "pwd", usage: "pwd", summary: "Print working directory", run: pwd})
	i.register(command{name: "whoami", usage: "whoami", summary: "Display current user", run: whoami})
	i.register(command{name: "history", usage: "history", summary: "Show command history", run: history})

	i.register(command{name: "ssh", usage: "ssh <target>", summary: "Connect to remote machine", section: sectionTools, run: i.ssh})
	i.register(command{name: "nmap", usage: "nmap <target>", summary: "Scan network target", section: sectionTools, run: i.nmap})
	i.register(command{name: "crack", usage: "crack <target>", summary: "Attempt password crack", section: sectionTools, run: i.crack})
	i.register(command{name: "decrypt", usage: "decrypt <file>", summary: "Decrypt encrypted file", section: sectionTools, run: i.decrypt})
	i.register(command{name: "download", usage: "download <file>", summary: "Download file to local", section: sectionTools, run: i.download})
	i.register(command{name: "mail", usage: "mail", summary: "Check messages", section: sectionTools, run: i.mail})
	i.register(command{name: "connect", usage: "connect <contact>", summary: "Open secure chat channel", section: sectionTools, run: connect})
	i.register(command{name: "scan", usage: "scan", summary: "Scan for clues in current dir", section: sectionTools, run: i.scan})
	i.register(command{name: "board", usage: "board", summary: "Open investigation board", section: sectionTools, run: board})

	i.register(command{name: "exit", section: sectionHidden, run: exit})
	i.register(command{name: "logout", section: sectionHidden, run: exit})
	i.register(command{name: "disconnect", section: sectionHidden, run: exit})
}

func (i *Interpreter) help(_ []string, _ Session) domain.CommandResult {
	res := domain.CommandResult{Lines: []domain.Line{system("Available commands:")}}
	appendSection := func(sec section) {
		for _, name := range i.ordered {
			c := i.commands[name]
			if c.section == sec {
				res.Lines = append(res.Lines, out(fmt.Sprintf("  %-22s %s", c.usage, c.summary)))
			}
		}
	}
	appendSection(sectionBasic)
	res.Lines = append(res.Lines, out(""), system("Hacking tools:"))
	appendSection(sectionTools)
	return res
}

func hasFlag(args []string, flags ...string) bool {
	for _, a := range args {
		for _, f := range flags {
			if a == f {
				return true
			}
		}
	}
	return false
}

func firstOperand(args []string) (string, bool) {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a, true
		}
	}
	return "", false
}

func (i *Interpreter) ls(args []string, s Session) domain.CommandResult {
	showHidden := hasFlag(args, "-a", "-la", "-al")
	target := s.Path
	operand, hasOperand := firstOperand(args)
	if hasOperand {
		target = vfs.Resolve(s.Path, operand)
	} else {
		operand = "."
	}

	dir, ok := i.fs.Dir(s.Machine, target)
	if !ok {
		return errorResult(fmt.Sprintf("ls: cannot access '%s': No such directory", operand))
	}

	names := vfs.List(dir, showHidden)
	if len(names) == 0 {
		return domain.CommandResult{Lines: []domain.Line{out("(empty directory)")}}
	}

	res := domain.CommandResult{Lines: make([]domain.Line, 0, len(names))}
	for _, name := range names {
		switch child := dir.Children[name].(type) {
		case *domain.Directory:
			res.Lines = append(res.Lines, out(fmt.Sprintf("d  %s/", name)))
		case *domain.File:
			line := fmt.Sprintf("-  %s", name)
			if child.Encrypted {
				line += "  [ENCRYPTED]"
			}
			res.Lines = append(res.Lines, out(line))
		}
	}
	return res
}

func (i *Interpreter) cd(args []string, s Session) domain.CommandResult {
	if len(args) == 0 {
		return domain.CommandResult{NewPath: []string{s.Path[0]}}
	}

	target := vfs.Resolve(s.Path, args[0])
	entry, err := i.fs.Lookup(s.Machine, target)
	if err != nil {
		return errorResult("cd: no such directory: " + args[0])
	}
	if _, ok := entry.(*domain.Directory); !ok {
		return errorResult("cd: not a directory: " + args[0])
	}
	return domain.CommandResult{NewPath: target}
}

// fileArg resolves a file operand, falling back to a literal child name of the
// current directory.
func (i *Interpreter) fileArg(arg string, s Session) (domain.Entry, bool) {
	if e, err := i.fs.Lookup(s.Machine, vfs.Resolve(s.Path, arg)); err == nil {
		return e, true
	}
	if dir, ok := i.fs.Dir(s.Machine, s.Path); ok {
		if e, ok := dir.Children[arg]; ok {
			return e, true
		}
	}
	return nil, false
}

func (i *Interpreter) cat(args []string, s Session) domain.CommandResult {
	if len(args) == 0 {
		return errorResult("cat: missing file operand")
	}
	name := args[0]

	entry, ok := i.fileArg(name, s)
	if !ok {
		return errorResult(fmt.Sprintf("cat: %s: No such file", name))
	}
	file, ok := entry.(*domain.File)
	if !ok {
		return errorResult(fmt.Sprintf("cat: %s: Is a directory", name))
	}

	content, trigger, err := vfs.Read(file)
	if errors.Is(err, vfs.ErrEncrypted) {
		return warningResult(fmt.Sprintf("[ENCRYPTED] %s - use 'decrypt %s' to decrypt", name, name))
	}

	res := domain.CommandResult{Lines: lines(domain.LineOutput, content)}
	if trigger != "" {
		res.Actions = []domain.ActionDescriptor{domain.Trigger{ID: trigger}.Descriptor()}
	}
	return res
}

func (i *Interpreter) grep(args []string, s Session) domain.CommandResult {
	if len(args) < 2 {
		return errorResult("Usage: grep <pattern> <file>")
	}
	pattern, name := args[0], args[1]

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return errorResult(fmt.Sprintf("grep: invalid pattern: %s", pattern))
	}

	entry, ok := i.fileArg(name, s)
	file, isFile := entry.(*domain.File)
	if !ok || !isFile {
		return errorResult(fmt.Sprintf("grep: %s: No such file", name))
	}
	if file.Encrypted {
		return errorResult(fmt.Sprintf("grep: %s: File is encrypted", name))
	}

	var res domain.CommandResult
	for _, line := range strings.Split(file.Content, "\n") {
		if re.MatchString(line) {
			res.Lines = append(res.Lines, success(strings.TrimSpace(line)))
		}
	}
	if len(res.Lines) == 0 {
		res.Lines = []domain.Line{out("(no matches)")}
	}
	return res
}

func clearScreen(_ []string, _ Session) domain.CommandResult {
	return domain.CommandResult{Clear: true}
}

func pwd(_ []string, s Session) domain.CommandResult {
	return domain.CommandResult{Lines: []domain.Line{out(vfs.FormatPath(s.Path))}}
}

func whoami(_ []string, s Session) domain.CommandResult {
	user := "guest"
	if s.Machine == domain.LocalMachine {
		user = "echo"
	}
	return domain.CommandResult{Lines: []domain.Line{out(user)}}
}

func history(_ []string, s Session) domain.CommandResult {
	res := domain.CommandResult{Lines: []domain.Line{system("Command history:")}}
	for n, cmd := range s.History {
		res.Lines = append(res.Lines, out(fmt.Sprintf("  %3d  %s", n+1, cmd)))
	}
	return res
}

func (i *Interpreter) ssh(args []string, s Session) domain.CommandResult {
	if len(args) == 0 {
		return errorResult("Usage: ssh <hostname|ip>")
	}
	target := args[0]

	m, ok := i.fs.Find(target)
	if !ok {
		return errorResult("ssh: Could not resolve hostname " + target)
	}
	if m.ID == s.Machine {
		return warningResult("Already connected to this machine.")
	}
	if m.RequiresAccess && !m.AccessGranted && !s.Flags[m.AccessFlag()] {
		return domain.CommandResult{Lines: []domain.Line{
			{Type: domain.LineError, Content: fmt.Sprintf("ssh: Connection to %s refused.", m.Hostname)},
			warning("Access denied. Use crack or find credentials to gain access."),
		}}
	}

	res := domain.CommandResult{
		Lines: []domain.Line{
			system(fmt.Sprintf("Connecting to %s (%s)...", m.Hostname, m.IP)),
			success("Connection established."),
		},
		NewMachine: m.ID,
		NewPath:    m.RootPath(),
	}
	if m.MOTD != "" {
		res.Lines = append(res.Lines, lines(domain.LineSystem, m.MOTD)...)
	}
	return res
}

// unpatchedHost is the machine whose scan reveals the story's backdoor port.
const unpatchedHost = "nexagen-research"

func status(m domain.Machine) string {
	if m.RequiresAccess {
		return "SECURED"
	}
	return "OPEN"
}

func (i *Interpreter) nmap(args []string, _ Session) domain.CommandResult {
	if len(args) == 0 {
		machines := i.fs.Machines()
		res := domain.CommandResult{Lines: []domain.Line{system("Starting NMAP scan..."), out(""), out("Discovered hosts:")}}
		for _, m := range machines {
			res.Lines = append(res.Lines, out(fmt.Sprintf("  %-16s %-20s [%s]", m.IP, m.Hostname, status(m))))
		}
		res.Lines = append(res.Lines, out(""), out(fmt.Sprintf("%d hosts found.", len(machines))))
		return res
	}

	target := args[0]
	m, ok := i.fs.Find(target)
	if !ok {
		return errorResult(fmt.Sprintf("nmap: Host %s not found", target))
	}

	res := domain.CommandResult{Lines: []domain.Line{
		system(fmt.Sprintf("Scanning %s (%s)...", m.Hostname, m.IP)),
		out(""),
		out("Host: " + m.Hostname),
		out("IP: " + m.IP),
		out("Status: " + status(m)),
		out("Open ports:"),
		out("  22/tcp   ssh"),
		out("  80/tcp   http"),
		out("  443/tcp  https"),
	}}
	if m.ID == unpatchedHost {
		res.Lines = append(res.Lines,
			out("  8080/tcp http-alt [UNPATCHED]"),
			warning("  ^ Potential vulnerability detected on port 8080"),
		)
	}
	return res
}

func (i *Interpreter) crack(args []string, _ Session) domain.CommandResult {
	if len(args) == 0 {
		return errorResult("Usage: crack <target>")
	}
	target := args[0]

	m, ok := i.fs.Find(target)
	if !ok {
		return errorResult("crack: Unknown target " + target)
	}
	if !m.RequiresAccess {
		return warningResult("Target does not require credentials.")
	}
	return domain.CommandResult{
		Lines: []domain.Line{
			system(fmt.Sprintf("Initiating password cracker against %s...", m.Hostname)),
			system("Launching interactive cracker module..."),
		},
		Actions: []domain.ActionDescriptor{domain.TriggerMinigame{Minigame: "crack_" + m.ID}.Descriptor()},
	}
}

func (i *Interpreter) decrypt(args []string, s Session) domain.CommandResult {
	if len(args) == 0 {
		return errorResult("Usage: decrypt <file>")
	}
	name := args[0]

	entry, ok := i.fileArg(name, s)
	file, isFile := entry.(*domain.File)
	if !ok || !isFile {
		return errorResult(fmt.Sprintf("decrypt: %s: No such file", name))
	}
	if !file.Encrypted {
		return warningResult(name + " is not encrypted.")
	}
	return domain.CommandResult{
		Lines: []domain.Line{
			system(fmt.Sprintf("Analyzing encryption on %s...", name)),
			system("Launching decryption module..."),
		},
		Actions: []domain.ActionDescriptor{domain.TriggerMinigame{Minigame: "decrypt_" + file.Name}.Descriptor()},
	}
}

// DownloadDir is where downloaded files land on the local machine.
var DownloadDir = []string{domain.HomeRoot, "downloads"}

func (i *Interpreter) download(args []string, s Session) domain.CommandResult {
	if len(args) == 0 {
		return errorResult("Usage: download <file>")
	}
	name := args[0]

	entry, ok := i.fileArg(name, s)
	file, isFile := entry.(*domain.File)
	if !ok || !isFile {
		return errorResult(fmt.Sprintf("download: %s: No such file", name))
	}
	return domain.CommandResult{
		Lines: []domain.Line{
			system(fmt.Sprintf("Downloading %s...", name)),
			success(fmt.Sprintf("%s saved to %s/", file.Name, vfs.FormatPath(DownloadDir))),
		},
		Actions: []domain.ActionDescriptor{domain.AddFile{Name: file.Name, Content: file.Content}.Descriptor()},
	}
}

var inboxPath = []string{domain.HomeRoot, "mail", "inbox"}

func (i *Interpreter) mail(_ []string, s Session) domain.CommandResult {
	if s.Machine != domain.LocalMachine {
		return errorResult("mail: Only available on local machine")
	}
	res := domain.CommandResult{Lines: []domain.Line{system("Checking encrypted mail..."), out(""), out("INBOX:")}}
	if inbox, ok := i.fs.Dir(domain.LocalMachine, inboxPath); ok {
		for n, name := range vfs.List(inbox, false) {
			res.Lines = append(res.Lines, out(fmt.Sprintf("  %d. %s", n+1, name)))
		}
	}
	res.Lines = append(res.Lines, out(""), out("Read with: cat "+path.Join(inboxPath[1:]...)+"/<filename>"))
	return res
}

func connect(args []string, _ Session) domain.CommandResult {
	if len(args) == 0 {
		return errorResult("Usage: connect <contact>")
	}
	return domain.CommandResult{
		Lines: []domain.Line{system(fmt.Sprintf("Opening secure channel to %s...", args[0]))},
		Actions: []domain.ActionDescriptor{
			domain.SetView{View: domain.ViewChat}.Descriptor(),
			domain.SetActiveContact{Contact: args[0]}.Descriptor(),
		},
	}
}

func (i *Interpreter) scan(_ []string, s Session) domain.CommandResult {
	dir, ok := i.fs.Dir(s.Machine, s.Path)
	if !ok {
		return errorResult("scan: cannot scan current directory")
	}

	var found []domain.Line
	for _, name := range vfs.List(dir, true) {
		var tags []string
		switch child := dir.Children[name].(type) {
		case *domain.File:
			if child.Encrypted {
				tags = append(tags, "[ENCRYPTED]")
			}
			if child.Hidden {
				tags = append(tags, "[HIDDEN]")
			}
			if child.OnRead != "" {
				tags = append(tags, "[CLUE]")
			}
		case *domain.Directory:
			if child.Hidden {
				tags = append(tags, "[HIDDEN]")
			}
		}
		if len(tags) > 0 {
			found = append(found, warning(fmt.Sprintf("  %s %s", name, strings.Join(tags, " "))))
		}
	}

	res := domain.CommandResult{Lines: []domain.Line{system("Scanning for points of interest...")}}
	if len(found) == 0 {
		res.Lines = append(res.Lines, out("No notable items found in current directory."))
		return res
	}
	res.Lines = append(res.Lines, out(""))
	res.Lines = append(res.Lines, found...)
	res.Lines = append(res.Lines, out(""), out(fmt.Sprintf("%d items of interest found.", len(found))))
	return res
}

func board(_ []string, _ Session) domain.CommandResult {
	return domain.CommandResult{
		Lines:   []domain.Line{system("Opening investigation board...")},
		Actions: []domain.ActionDescriptor{domain.SetView{View: domain.ViewInvestigation}.Descriptor()},
	}
}

func exit(_ []string, s Session) domain.CommandResult {
	if s.Machine != domain.LocalMachine {
		return domain.CommandResult{
			Lines:      []domain.Line{system("Disconnecting..."), success("Returned to local machine.")},
			NewMachine: domain.LocalMachine,
			NewPath:    []string{domain.HomeRoot},
		}
	}
	return domain.CommandResult{Lines: []domain.Line{out("You can't exit reality. Use Esc for menu.")}}
}
