package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/bigconv/internal/config"
)

// completionGenerators render a completion script from the option list.
var completionGenerators = map[string]func(*strings.Builder, []config.FlagSpec){
	"bash":       bashCompletion,
	"zsh":        zshCompletion,
	"fish":       fishCompletion,
	"powershell": powerShellCompletion,
	"ps":         powerShellCompletion,
}

// GenerateCompletion writes the completion script for shell ("bash", "zsh",
// "fish" or "powershell") to out. The script covers every option of the
// command line, with value suggestions where the option has them.
func GenerateCompletion(out io.Writer, shell string) error {
	gen, ok := completionGenerators[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
	var sb strings.Builder
	gen(&sb, config.Flags())
	if _, err := io.WriteString(out, sb.String()); err != nil {
		return fmt.Errorf("writing %s completion: %w", shell, err)
	}
	return nil
}

// describe returns the usage text without its final period or quotes, safe
// inside any shell's quoted string.
func describe(f config.FlagSpec) string {
	return strings.TrimSuffix(strings.ReplaceAll(f.Usage, "'", ""), ".")
}

// spellings returns every way f can be written: Go's flag package takes one
// or two dashes.
func spellings(f config.FlagSpec) []string {
	names := []string{"-" + f.Name, "--" + f.Name}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func bashCompletion(sb *strings.Builder, flags []config.FlagSpec) {
	var opts []string
	for _, f := range flags {
		opts = append(opts, "--"+f.Name)
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	sb.WriteString("# bash completion for bigconv\n")
	sb.WriteString("# Source this file or copy it to /etc/bash_completion.d/bigconv\n\n")
	sb.WriteString("_bigconv() {\n")
	sb.WriteString("    local cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	sb.WriteString("    local prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	sb.WriteString("    case \"${prev}\" in\n")
	for _, f := range flags {
		var reply string
		switch {
		case f.Kind == config.ValueFile:
			reply = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case f.Kind == config.ValueText && len(f.Values) > 0:
			reply = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		case f.Kind == config.ValueText:
			reply = "COMPREPLY=()"
		default:
			continue
		}
		fmt.Fprintf(sb, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(spellings(f), "|"), reply)
	}
	sb.WriteString("    esac\n\n")
	fmt.Fprintf(sb, "    COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(opts, " "))
	sb.WriteString("}\n\n")
	sb.WriteString("complete -F _bigconv bigconv\n")
}

func zshCompletion(sb *strings.Builder, flags []config.FlagSpec) {
	sb.WriteString("#compdef bigconv\n\n")
	sb.WriteString("# zsh completion for bigconv; place it in a directory of $fpath\n\n")
	sb.WriteString("_arguments -s \\\n")
	for i, f := range flags {
		action := ""
		switch {
		case f.Kind == config.ValueFile:
			action = fmt.Sprintf(":%s:_files", f.Name)
		case f.Kind == config.ValueText && len(f.Values) > 0:
			action = fmt.Sprintf(":%s:(%s)", f.Name, strings.Join(f.Values, " "))
		case f.Kind == config.ValueText:
			action = fmt.Sprintf(":%s:", f.Name)
		}
		var entry string
		if f.Short != "" {
			entry = fmt.Sprintf("'(-%[1]s --%[2]s)'{-%[1]s,--%[2]s}'[%[3]s]%[4]s'", f.Short, f.Name, describe(f), action)
		} else {
			entry = fmt.Sprintf("'--%s[%s]%s'", f.Name, describe(f), action)
		}
		sb.WriteString("    " + entry)
		if i < len(flags)-1 {
			sb.WriteString(" \\")
		}
		sb.WriteString("\n")
	}
}

func fishCompletion(sb *strings.Builder, flags []config.FlagSpec) {
	sb.WriteString("# fish completion for bigconv; copy to ~/.config/fish/completions/bigconv.fish\n\n")
	sb.WriteString("complete -c bigconv -f\n")
	for _, f := range flags {
		parts := []string{"complete -c bigconv"}
		if f.Short != "" {
			parts = append(parts, "-s "+f.Short)
		}
		parts = append(parts, "-l "+f.Name, fmt.Sprintf("-d '%s'", describe(f)))
		switch {
		case f.Kind == config.ValueFile:
			parts = append(parts, "-rF")
		case f.Kind == config.ValueText && len(f.Values) > 0:
			parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
		case f.Kind == config.ValueText:
			parts = append(parts, "-x")
		}
		sb.WriteString(strings.Join(parts, " ") + "\n")
	}
}

func powerShellCompletion(sb *strings.Builder, flags []config.FlagSpec) {
	sb.WriteString("# PowerShell completion for bigconv; dot-source it from $PROFILE\n\n")
	sb.WriteString("Register-ArgumentCompleter -CommandName 'bigconv' -Native -ScriptBlock {\n")
	sb.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	sb.WriteString("    $options = @(\n")
	for _, f := range flags {
		fmt.Fprintf(sb, "        @{ Name = '--%s'; Description = '%s' }\n", f.Name, describe(f))
		if f.Short != "" {
			fmt.Fprintf(sb, "        @{ Name = '-%s'; Description = '%s' }\n", f.Short, describe(f))
		}
	}
	sb.WriteString("    )\n\n")
	sb.WriteString("    $elements = $commandAst.CommandElements\n")
	sb.WriteString("    $prev = if ($elements.Count -gt 1) { $elements[-1].ToString() } else { '' }\n")
	sb.WriteString("    if ($wordToComplete -ne '' -and $elements.Count -gt 2) { $prev = $elements[-2].ToString() }\n\n")
	sb.WriteString("    $values = switch ($prev) {\n")
	for _, f := range flags {
		if f.Kind != config.ValueText || len(f.Values) == 0 {
			continue
		}
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = "'" + v + "'"
		}
		patterns := make([]string, 0, 3)
		for _, s := range spellings(f) {
			patterns = append(patterns, "'"+s+"'")
		}
		fmt.Fprintf(sb, "        { $_ -in %s } { @(%s) }\n", strings.Join(patterns, ", "), strings.Join(quoted, ", "))
	}
	sb.WriteString("    }\n")
	sb.WriteString("    if ($values) {\n")
	sb.WriteString("        $values | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	sb.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	sb.WriteString("        }\n")
	sb.WriteString("        return\n")
	sb.WriteString("    }\n\n")
	sb.WriteString("    $options | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	sb.WriteString("        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)\n")
	sb.WriteString("    }\n")
	sb.WriteString("}\n")
}
