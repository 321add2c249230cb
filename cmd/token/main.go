// token emite un JWT firmado con JWT_SECRET para probar la API sin el proveedor de identidad.
//
// Uso: go run ./cmd/token --user <id> [--owner <id>] [--role admin|employee] [--minutes 60]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	var (
		userID  string
		ownerID string
		role    string
		minutes int
	)
	fs := pflag.NewFlagSet("token", pflag.ExitOnError)
	fs.StringVar(&userID, "user", "", "ID del usuario (requerido)")
	fs.StringVar(&ownerID, "owner", "", "dueño del inventario (por defecto el usuario)")
	fs.StringVar(&role, "role", jwt.RoleEmployee, "admin | employee")
	fs.IntVar(&minutes, "minutes", cfg.JWT.Expiration, "minutos de validez")
	_ = fs.Parse(os.Args[1:])

	if userID == "" {
		fmt.Fprintln(os.Stderr, "--user es requerido")
		os.Exit(2)
	}
	if role != jwt.RoleAdmin && role != jwt.RoleEmployee {
		fmt.Fprintf(os.Stderr, "--role inválido: %q (admin|employee)\n", role)
		os.Exit(2)
	}
	if ownerID == "" {
		ownerID = userID
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, userID, ownerID, role, cfg.JWT.Issuer, minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
